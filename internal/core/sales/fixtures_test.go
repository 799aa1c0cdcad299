package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want=%s got=%s", want, got.String())
}

func item(sku string, qty int, price, discount string) PurchaseItem {
	return PurchaseItem{SKU: sku, Quantity: qty, SalePrice: dec(price), Discount: dec(discount)}
}

// sampleDataset has three sellers with distinct profits:
//
//	seller_1: revenue 225, profit 97.5, 2 receipts
//	seller_2: revenue 285, profit 85, 1 receipt
//	seller_3: revenue 15, profit -5, 1 receipt
func sampleDataset() *Dataset {
	return &Dataset{
		Customers: []Customer{
			{ID: "customer_1", FirstName: "Olga", LastName: "Smirnova"},
		},
		Products: []Product{
			{SKU: "SKU_001", Name: "Kettle", PurchasePrice: dec("50")},
			{SKU: "SKU_002", Name: "Mug", PurchasePrice: dec("20")},
			{SKU: "SKU_003", Name: "Spoon", PurchasePrice: dec("5.5")},
		},
		Sellers: []Seller{
			{ID: "seller_1", FirstName: "Alexey", LastName: "Petrov"},
			{ID: "seller_2", FirstName: "Maria", LastName: "Ivanova"},
			{ID: "seller_3", FirstName: "Ivan", LastName: "Sidorov"},
		},
		PurchaseRecords: []PurchaseRecord{
			{ReceiptID: "r1", SellerID: "seller_1", CustomerID: "customer_1", Items: []PurchaseItem{
				item("SKU_001", 2, "100", "10"),
				item("SKU_003", 4, "10", "0"),
			}},
			{ReceiptID: "r2", SellerID: "seller_2", CustomerID: "customer_1", Items: []PurchaseItem{
				item("SKU_002", 10, "30", "5"),
			}},
			{ReceiptID: "r3", SellerID: "seller_1", CustomerID: "customer_1", Items: []PurchaseItem{
				item("SKU_003", 1, "10", "50"),
			}},
			{ReceiptID: "r4", SellerID: "seller_3", CustomerID: "customer_1", Items: []PurchaseItem{
				item("SKU_002", 1, "15", "0"),
			}},
		},
	}
}

// equalProfitDataset has n sellers that each sell one unit worth 1000 profit.
func equalProfitDataset(n int) *Dataset {
	ds := &Dataset{
		Customers: []Customer{{ID: "customer_1"}},
		Products:  []Product{{SKU: "SKU_001", PurchasePrice: decimal.Zero}},
	}
	for i := 0; i < n; i++ {
		id := "seller_" + string(rune('a'+i))
		ds.Sellers = append(ds.Sellers, Seller{ID: id, FirstName: "Seller", LastName: id})
		ds.PurchaseRecords = append(ds.PurchaseRecords, PurchaseRecord{
			SellerID: id,
			Items:    []PurchaseItem{item("SKU_001", 1, "1000", "0")},
		})
	}
	return ds
}
