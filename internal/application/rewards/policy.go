package rewards

import "github.com/shopspring/decimal"

// PointsPolicy computes eco point awards. Pluggable so reward economics are
// configuration, not business logic baked into the transaction flow.
type PointsPolicy interface {
	// SalePoints is the award for the seller of a completed transaction.
	SalePoints(totalAmount decimal.Decimal) int
	// PurchasePoints is the award for the buyer of a completed transaction.
	PurchasePoints(totalAmount decimal.Decimal) int
	// ReviewBonus is the flat award for a user's first rating of a dealer.
	ReviewBonus() int
}

// RatePolicy awards points proportionally to the transaction total:
// floor(total * rate). Rates come from config.
type RatePolicy struct {
	SaleRate          decimal.Decimal
	PurchaseRate      decimal.Decimal
	ReviewBonusPoints int
}

func (p RatePolicy) SalePoints(totalAmount decimal.Decimal) int {
	return int(totalAmount.Mul(p.SaleRate).IntPart())
}

func (p RatePolicy) PurchasePoints(totalAmount decimal.Decimal) int {
	return int(totalAmount.Mul(p.PurchaseRate).IntPart())
}

func (p RatePolicy) ReviewBonus() int {
	return p.ReviewBonusPoints
}
