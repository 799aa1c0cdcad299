package sales

import (
	"fmt"
	"sort"
)

// Options carries the pluggable strategies of an analysis run.
// Both strategies are required.
type Options struct {
	CalculateRevenue RevenueFunc
	CalculateBonus   BonusFunc

	// TopProductsLimit caps each seller's top products; <= 0 means DefaultTopProductsLimit.
	TopProductsLimit int
}

// DefaultOptions returns the simple revenue method with the built-in profit tiers.
func DefaultOptions() Options {
	return Options{
		CalculateRevenue: CalculateSimpleRevenue,
		CalculateBonus:   CalculateBonusByProfit,
		TopProductsLimit: DefaultTopProductsLimit,
	}
}

func (o Options) validate() error {
	switch {
	case o.CalculateRevenue == nil && o.CalculateBonus == nil:
		return fmt.Errorf("%w: revenue and bonus calculations are missing", ErrMissingOptions)
	case o.CalculateRevenue == nil:
		return fmt.Errorf("%w: revenue calculation is missing", ErrMissingOptions)
	case o.CalculateBonus == nil:
		return fmt.Errorf("%w: bonus calculation is missing", ErrMissingOptions)
	}
	return nil
}

func (o Options) topProductsLimit() int {
	if o.TopProductsLimit <= 0 {
		return DefaultTopProductsLimit
	}
	return o.TopProductsLimit
}

// Analyze folds the purchase records of data into one report per seller,
// ranked by profit (highest first, ties keep catalog order).
//
// Inputs are validated before any work starts. A purchase record naming an
// unknown seller, or an item naming an unknown SKU, fails the whole run with
// ErrUnknownSeller or ErrUnknownProduct; no partial result is returned.
func Analyze(data *Dataset, opts Options) ([]SellerReport, error) {
	if err := ValidateDataset(data); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	sellers := make([]*sellerAccumulator, 0, len(data.Sellers))
	sellerIndex := make(map[string]*sellerAccumulator, len(data.Sellers))
	for _, s := range data.Sellers {
		acc := newSellerAccumulator(s)
		sellers = append(sellers, acc)
		sellerIndex[s.ID] = acc
	}

	productIndex := make(map[string]Product, len(data.Products))
	for _, p := range data.Products {
		productIndex[p.SKU] = p
	}

	for i, record := range data.PurchaseRecords {
		seller, ok := sellerIndex[record.SellerID]
		if !ok {
			return nil, fmt.Errorf("purchase_records[%d]: %w %q", i, ErrUnknownSeller, record.SellerID)
		}
		seller.report.SalesCount++

		for j, item := range record.Items {
			product, ok := productIndex[item.SKU]
			if !ok {
				return nil, fmt.Errorf("purchase_records[%d].items[%d]: %w %q", i, j, ErrUnknownProduct, item.SKU)
			}
			revenue := opts.CalculateRevenue(item, product)
			cost := product.PurchasePrice.Mul(decimalFromInt(item.Quantity))

			seller.report.Revenue = seller.report.Revenue.Add(revenue)
			seller.report.Profit = seller.report.Profit.Add(revenue.Sub(cost))
			seller.addQuantity(item.SKU, item.Quantity)
		}
	}

	sort.SliceStable(sellers, func(i, j int) bool {
		return sellers[i].report.Profit.GreaterThan(sellers[j].report.Profit)
	})

	limit := opts.topProductsLimit()
	reports := make([]SellerReport, len(sellers))
	for rank, acc := range sellers {
		acc.report.TopProducts = acc.topProducts(limit)
		acc.report.Bonus = opts.CalculateBonus(rank, len(sellers), acc.report)

		acc.report.Revenue = RoundMoney(acc.report.Revenue)
		acc.report.Profit = RoundMoney(acc.report.Profit)
		acc.report.Bonus = RoundMoney(acc.report.Bonus)
		reports[rank] = acc.report
	}

	return reports, nil
}

// topProducts returns the SKUs sold by quantity, highest first. Ties keep the
// order in which each SKU was first sold.
func (a *sellerAccumulator) topProducts(limit int) []ProductQuantity {
	out := make([]ProductQuantity, 0, len(a.soldSKUs))
	for _, sku := range a.soldSKUs {
		out = append(out, ProductQuantity{SKU: sku, Quantity: a.sold[sku]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity > out[j].Quantity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
