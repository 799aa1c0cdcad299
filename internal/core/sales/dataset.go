package sales

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequiredDataKeys lists the collections a dataset must carry, and nothing else.
var RequiredDataKeys = []string{"customers", "products", "sellers", "purchase_records"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimal fields are range-checked exactly, not through float64.
	v.RegisterStructValidation(validateProductPrices, Product{})
	v.RegisterStructValidation(validateItemPrices, PurchaseItem{})
	return v
}

func validateProductPrices(sl validator.StructLevel) {
	p := sl.Current().Interface().(Product)
	if p.PurchasePrice.IsNegative() {
		sl.ReportError(p.PurchasePrice, "purchase_price", "PurchasePrice", "gte", "0")
	}
}

func validateItemPrices(sl validator.StructLevel) {
	item := sl.Current().Interface().(PurchaseItem)
	if item.SalePrice.IsNegative() {
		sl.ReportError(item.SalePrice, "sale_price", "SalePrice", "gte", "0")
	}
	switch {
	case item.Discount.IsNegative():
		sl.ReportError(item.Discount, "discount", "Discount", "gte", "0")
	case item.Discount.GreaterThan(hundred):
		sl.ReportError(item.Discount, "discount", "Discount", "lte", "100")
	}
}

// DecodeDataset parses a raw JSON document into a Dataset. The document must be
// an object holding exactly the RequiredDataKeys, each a non-empty array.
// The decoded dataset is validated before it is returned.
func DecodeDataset(raw []byte) (*Dataset, error) {
	var top map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, invalidData("", "dataset must be a JSON object: %v", err)
	}
	if top == nil {
		return nil, invalidData("", "dataset is required")
	}

	var problems []*ValidationError
	for key := range top {
		if !isRequiredKey(key) {
			problems = append(problems, invalidData(key, "unknown collection"))
		}
	}
	for _, key := range RequiredDataKeys {
		value, ok := top[key]
		if !ok {
			problems = append(problems, invalidData(key, "collection is missing"))
			continue
		}
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			problems = append(problems, invalidData(key, "must be a list"))
			continue
		}
		var elems []jsoniter.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			problems = append(problems, invalidData(key, "malformed list: %v", err))
			continue
		}
		if len(elems) == 0 {
			problems = append(problems, invalidData(key, "must not be empty"))
		}
	}
	if len(problems) > 0 {
		return nil, &MultiValidationError{Errors: problems}
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, invalidData("", "malformed dataset: %v", err)
	}
	if err := ValidateDataset(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func isRequiredKey(key string) bool {
	for _, k := range RequiredDataKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ValidateDataset checks presence of every collection, field constraints of
// each record, and uniqueness of seller ids and product SKUs.
// All failures unwrap to ErrInvalidData.
func ValidateDataset(ds *Dataset) error {
	if ds == nil {
		return invalidData("", "dataset is required")
	}

	var problems []*ValidationError
	if len(ds.Customers) == 0 {
		problems = append(problems, invalidData("customers", "must not be empty"))
	}
	if len(ds.Products) == 0 {
		problems = append(problems, invalidData("products", "must not be empty"))
	}
	if len(ds.Sellers) == 0 {
		problems = append(problems, invalidData("sellers", "must not be empty"))
	}
	if len(ds.PurchaseRecords) == 0 {
		problems = append(problems, invalidData("purchase_records", "must not be empty"))
	}
	if len(problems) > 0 {
		return &MultiValidationError{Errors: problems}
	}

	if err := validate.Struct(ds); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, &ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Dataset."),
				Message: describeFieldError(fe),
			})
		}
	}

	seenSellers := make(map[string]struct{}, len(ds.Sellers))
	for i, s := range ds.Sellers {
		if _, dup := seenSellers[s.ID]; dup && s.ID != "" {
			problems = append(problems, invalidData(fmt.Sprintf("sellers[%d].id", i), "duplicate seller id %q", s.ID))
		}
		seenSellers[s.ID] = struct{}{}
	}
	seenSKUs := make(map[string]struct{}, len(ds.Products))
	for i, p := range ds.Products {
		if _, dup := seenSKUs[p.SKU]; dup && p.SKU != "" {
			problems = append(problems, invalidData(fmt.Sprintf("products[%d].sku", i), "duplicate sku %q", p.SKU))
		}
		seenSKUs[p.SKU] = struct{}{}
	}

	if len(problems) > 0 {
		return &MultiValidationError{Errors: problems}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
