package sales

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// DefaultTopProductsLimit is the number of products kept per seller report.
const DefaultTopProductsLimit = 10

// Customer is carried through for presence validation only.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Product is a catalog entry. SKU must be unique across the catalog.
type Product struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name,omitempty"`
	Category      string          `json:"category,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"` // >= 0
}

// Seller is a catalog entry. ID must be unique across the catalog.
type Seller struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position,omitempty"`
}

// PurchaseItem is a single line of a purchase record.
type PurchaseItem struct {
	SKU       string          `json:"sku" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	SalePrice decimal.Decimal `json:"sale_price"` // >= 0
	Discount  decimal.Decimal `json:"discount"`   // percent, 0..100
}

// PurchaseRecord is one receipt, owned by exactly one seller.
type PurchaseRecord struct {
	ReceiptID  string         `json:"receipt_id,omitempty"`
	SellerID   string         `json:"seller_id" validate:"required"`
	CustomerID string         `json:"customer_id,omitempty"`
	Items      []PurchaseItem `json:"items" validate:"required,min=1,dive"`
}

// Dataset is the full input of a single analysis run.
type Dataset struct {
	Customers       []Customer       `json:"customers"`
	Products        []Product        `json:"products" validate:"dive"`
	Sellers         []Seller         `json:"sellers" validate:"dive"`
	PurchaseRecords []PurchaseRecord `json:"purchase_records" validate:"dive"`
}

// ProductQuantity is one entry of a seller's top products.
type ProductQuantity struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// SellerReport is the finalized, ranked result for one seller.
// Revenue, Profit and Bonus are rounded to two decimal places.
type SellerReport struct {
	SellerID    string            `json:"seller_id"`
	Name        string            `json:"name"`
	Revenue     decimal.Decimal   `json:"revenue"`
	Profit      decimal.Decimal   `json:"profit"`
	SalesCount  int               `json:"sales_count"`
	TopProducts []ProductQuantity `json:"top_products"`
	Bonus       decimal.Decimal   `json:"bonus"`
}

// MarshalJSON writes Revenue, Profit and Bonus as JSON numbers rather than
// the quoted strings decimal.Decimal produces on its own.
func (r SellerReport) MarshalJSON() ([]byte, error) {
	topProducts := r.TopProducts
	if topProducts == nil {
		topProducts = []ProductQuantity{}
	}
	return json.Marshal(struct {
		SellerID    string            `json:"seller_id"`
		Name        string            `json:"name"`
		Revenue     jsoniter.Number   `json:"revenue"`
		Profit      jsoniter.Number   `json:"profit"`
		SalesCount  int               `json:"sales_count"`
		TopProducts []ProductQuantity `json:"top_products"`
		Bonus       jsoniter.Number   `json:"bonus"`
	}{
		SellerID:    r.SellerID,
		Name:        r.Name,
		Revenue:     jsoniter.Number(r.Revenue.String()),
		Profit:      jsoniter.Number(r.Profit.String()),
		SalesCount:  r.SalesCount,
		TopProducts: topProducts,
		Bonus:       jsoniter.Number(r.Bonus.String()),
	})
}

// sellerAccumulator is the in-progress state of a SellerReport while purchase
// records are folded. soldSKUs keeps first-sale order for stable tie-breaks.
type sellerAccumulator struct {
	report   SellerReport
	sold     map[string]int
	soldSKUs []string
}

func newSellerAccumulator(s Seller) *sellerAccumulator {
	return &sellerAccumulator{
		report: SellerReport{
			SellerID:    s.ID,
			Name:        s.FirstName + " " + s.LastName,
			Revenue:     decimal.Zero,
			Profit:      decimal.Zero,
			Bonus:       decimal.Zero,
			TopProducts: []ProductQuantity{},
		},
		sold: make(map[string]int),
	}
}

func (a *sellerAccumulator) addQuantity(sku string, qty int) {
	if _, ok := a.sold[sku]; !ok {
		a.sold[sku] = 0
		a.soldSKUs = append(a.soldSKUs, sku)
	}
	a.sold[sku] += qty
}
