package execution

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

func TestSimpleFeeModel_Calculate(t *testing.T) {
	model := NewSimpleFeeModel(5)
	price := decimal.RequireFromString("1000")

	fees := model.Calculate(price, 100, core.SideBuy)
	if !fees.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Calculate() = %s, want 50", fees)
	}

	// Same rate on either side
	sellFees := model.Calculate(price, 100, core.SideSell)
	if !sellFees.Equal(fees) {
		t.Errorf("sell fees %s != buy fees %s", sellFees, fees)
	}
}

func TestIndianEquityFeeModel_SideSensitivity(t *testing.T) {
	model := NewIndianEquityFeeModel()
	price := decimal.RequireFromString("1000")

	buy := model.Calculate(price, 100, core.SideBuy)
	sell := model.Calculate(price, 100, core.SideSell)

	if !buy.IsPositive() || !sell.IsPositive() {
		t.Fatalf("fees must be positive: buy=%s sell=%s", buy, sell)
	}

	// Turnover 100000. Buy: brokerage 30 + txn 3.45 + sebi 0.001 +
	// stamp duty 15 + GST 18% of 33.451 -> 54.47 after banker's rounding.
	if !buy.Equal(decimal.RequireFromString("54.47")) {
		t.Errorf("buy fees = %s, want 54.47", buy)
	}

	// Sell swaps stamp duty (15) for STT (100): 139.47.
	if !sell.Equal(decimal.RequireFromString("139.47")) {
		t.Errorf("sell fees = %s, want 139.47", sell)
	}

	// STT dominates stamp duty, so a sell must always cost more here.
	if !sell.GreaterThan(buy) {
		t.Errorf("sell fees (%s) should exceed buy fees (%s)", sell, buy)
	}
}

func TestIndianEquityFeeModel_RoundsToTwoPlaces(t *testing.T) {
	model := NewIndianEquityFeeModel()
	fees := model.Calculate(decimal.RequireFromString("333.33"), 7, core.SideBuy)
	if fees.Exponent() < -2 {
		t.Errorf("fees %s not rounded to 2 places", fees)
	}
}

func TestFeeModels_NeverNegative(t *testing.T) {
	models := []FeeModel{
		NewSimpleFeeModel(0),
		NewIndianEquityFeeModel(),
	}
	for _, m := range models {
		got := m.Calculate(decimal.RequireFromString("0.01"), 1, core.SideSell)
		if got.IsNegative() {
			t.Errorf("%T returned negative commission %s", m, got)
		}
	}
}
