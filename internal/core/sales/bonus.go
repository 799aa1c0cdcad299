package sales

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BonusFunc computes the bonus of the seller at zero-based rank out of total
// sellers. seller.Profit holds the final, unrounded profit.
type BonusFunc func(rank, total int, seller SellerReport) decimal.Decimal

// BonusSchemeProfit is the name of the built-in tier table.
const BonusSchemeProfit = "profit"

// BonusScheme is a tier table mapping rank to a share of profit.
// Ranks without an explicit rate use Default. When LastRankGetsNothing is set,
// the last-ranked seller gets zero even if its rank has an explicit rate.
type BonusScheme struct {
	Name                string
	Rates               map[int]decimal.Decimal
	Default             decimal.Decimal
	LastRankGetsNothing bool
	Fingerprint         string // SHA-256 of the source file; empty for built-ins
}

// DefaultBonusScheme pays 15% to the leader, 10% to second and third place,
// 5% to everyone else and nothing to the last place.
var DefaultBonusScheme = BonusScheme{
	Name: BonusSchemeProfit,
	Rates: map[int]decimal.Decimal{
		0: decimal.RequireFromString("0.15"),
		1: decimal.RequireFromString("0.10"),
		2: decimal.RequireFromString("0.10"),
	},
	Default:             decimal.RequireFromString("0.05"),
	LastRankGetsNothing: true,
}

// Rate returns the share of profit paid at rank.
func (s BonusScheme) Rate(rank, total int) decimal.Decimal {
	if s.LastRankGetsNothing && rank == total-1 {
		return decimal.Zero
	}
	if rate, ok := s.Rates[rank]; ok {
		return rate
	}
	return s.Default
}

// Bonus returns profit times the rate for rank. Negative profit is not clamped.
func (s BonusScheme) Bonus(rank, total int, profit decimal.Decimal) decimal.Decimal {
	return profit.Mul(s.Rate(rank, total))
}

// Func adapts the scheme to a BonusFunc.
func (s BonusScheme) Func() BonusFunc {
	return func(rank, total int, seller SellerReport) decimal.Decimal {
		return s.Bonus(rank, total, seller.Profit)
	}
}

// Validate checks that every rate is a share in [0, 1] and ranks are non-negative.
func (s BonusScheme) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("bonus scheme name must not be empty")
	}
	if err := validRate(s.Default); err != nil {
		return fmt.Errorf("bonus scheme %q: default rate: %w", s.Name, err)
	}
	for rank, rate := range s.Rates {
		if rank < 0 {
			return fmt.Errorf("bonus scheme %q: rank %d must be >= 0", s.Name, rank)
		}
		if err := validRate(rate); err != nil {
			return fmt.Errorf("bonus scheme %q: rank %d: %w", s.Name, rank, err)
		}
	}
	return nil
}

func validRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate %s out of range [0, 1]", rate.String())
	}
	return nil
}

// CalculateBonusByProfit applies DefaultBonusScheme.
func CalculateBonusByProfit(rank, total int, seller SellerReport) decimal.Decimal {
	return DefaultBonusScheme.Bonus(rank, total, seller.Profit)
}
