package sales

import (
	"github.com/shopspring/decimal"
)

// RevenueFunc computes the net revenue of one purchase item. The resolved
// catalog product is passed alongside so cost-aware schemes can be plugged in.
type RevenueFunc func(item PurchaseItem, product Product) decimal.Decimal

// Supported revenue methods.
const (
	RevenueSimple = "simple"
)

var hundred = decimal.NewFromInt(100)

// RevenueMethods is the registry of named revenue strategies.
// To add a method: write a RevenueFunc and register it here.
var RevenueMethods = map[string]RevenueFunc{
	RevenueSimple: CalculateSimpleRevenue,
}

// ValidRevenueMethod reports whether name is a registered revenue method.
func ValidRevenueMethod(name string) bool {
	_, ok := RevenueMethods[name]
	return ok
}

// CalculateSimpleRevenue returns sale_price * quantity * (1 - discount/100).
// The item is expected to be validated: quantity > 0, price >= 0, discount in [0, 100].
func CalculateSimpleRevenue(item PurchaseItem, _ Product) decimal.Decimal {
	gross := item.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return gross.Mul(hundred.Sub(item.Discount)).Div(hundred)
}
