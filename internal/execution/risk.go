package execution

import (
	"math"

	"github.com/shopspring/decimal"
)

// RiskSizer converts a signed signal strength and account state into a
// signed target quantity. All sizers truncate toward zero so a position is
// never over-allocated, and return 0 when price or equity is non-positive.
type RiskSizer interface {
	// Size returns the signed target quantity. strength is in [-1, 1];
	// its sign carries the intended direction. volatility is the realized
	// volatility of the instrument and may be 0 when unknown.
	Size(strength float64, price, equity decimal.Decimal, currentPosition int64, volatility float64) int64
}

// FixedRiskSizer allocates a fixed fraction of equity scaled by signal
// strength.
type FixedRiskSizer struct {
	MaxPositionPct float64
}

// NewFixedRiskSizer returns a FixedRiskSizer capped at maxPositionPct of
// equity per instrument.
func NewFixedRiskSizer(maxPositionPct float64) *FixedRiskSizer {
	return &FixedRiskSizer{MaxPositionPct: maxPositionPct}
}

func (s *FixedRiskSizer) Size(strength float64, price, equity decimal.Decimal, currentPosition int64, volatility float64) int64 {
	if !price.IsPositive() || !equity.IsPositive() {
		return 0
	}
	maxValue := equity.Mul(decimal.NewFromFloat(s.MaxPositionPct))
	quantity := maxValue.Div(price).IntPart()
	return int64(float64(quantity) * strength)
}

// VolatilityRiskSizer scales the fixed-fraction allocation so the position
// targets a constant volatility; the scalar is capped at 2x.
type VolatilityRiskSizer struct {
	TargetVolatility float64
	MaxPositionPct   float64
}

// NewVolatilityRiskSizer returns a VolatilityRiskSizer targeting the given
// annualized volatility.
func NewVolatilityRiskSizer(targetVolatility, maxPositionPct float64) *VolatilityRiskSizer {
	return &VolatilityRiskSizer{TargetVolatility: targetVolatility, MaxPositionPct: maxPositionPct}
}

func (s *VolatilityRiskSizer) Size(strength float64, price, equity decimal.Decimal, currentPosition int64, volatility float64) int64 {
	if volatility <= 0 || !price.IsPositive() || !equity.IsPositive() {
		return 0
	}

	volScalar := math.Min(s.TargetVolatility/volatility, 2.0)
	maxValue := equity.Mul(decimal.NewFromFloat(s.MaxPositionPct))
	quantity := int64(maxValue.Div(price).InexactFloat64() * volScalar)
	return int64(float64(quantity) * strength)
}

// KellyRiskSizer allocates a Kelly fraction of equity, clamped by the
// maximum position percentage. The sign of strength carries the direction.
type KellyRiskSizer struct {
	KellyFraction  float64
	MaxPositionPct float64
}

// NewKellyRiskSizer returns a KellyRiskSizer with the given fraction and
// position cap.
func NewKellyRiskSizer(kellyFraction, maxPositionPct float64) *KellyRiskSizer {
	return &KellyRiskSizer{KellyFraction: kellyFraction, MaxPositionPct: maxPositionPct}
}

func (s *KellyRiskSizer) Size(strength float64, price, equity decimal.Decimal, currentPosition int64, volatility float64) int64 {
	if !price.IsPositive() || !equity.IsPositive() {
		return 0
	}

	kellyPct := math.Min(s.KellyFraction*math.Abs(strength), s.MaxPositionPct)
	value := equity.Mul(decimal.NewFromFloat(kellyPct))
	quantity := value.Div(price).IntPart()
	if strength < 0 {
		return -quantity
	}
	return quantity
}
