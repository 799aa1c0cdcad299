package sales

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places kept in finalized reports.
const MoneyPlaces = 2

// RoundMoney rounds d to MoneyPlaces, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
