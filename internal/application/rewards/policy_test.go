package rewards

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRatePolicy_FloorsFractionalPoints(t *testing.T) {
	p := RatePolicy{
		SaleRate:          decimal.NewFromFloat(0.02),
		PurchaseRate:      decimal.NewFromFloat(0.01),
		ReviewBonusPoints: 5,
	}
	total := decimal.NewFromFloat(1234.56)

	assert.Equal(t, 24, p.SalePoints(total)) // 24.6912 floors to 24
	assert.Equal(t, 12, p.PurchasePoints(total))
	assert.Equal(t, 5, p.ReviewBonus())
}

func TestRatePolicy_SmallTotalsAwardNothing(t *testing.T) {
	p := RatePolicy{
		SaleRate:     decimal.NewFromFloat(0.02),
		PurchaseRate: decimal.NewFromFloat(0.01),
	}
	total := decimal.NewFromFloat(40)

	assert.Equal(t, 0, p.SalePoints(total))
	assert.Equal(t, 0, p.PurchasePoints(total))
}
