// Package execution provides the pluggable cost and sizing models used by
// the backtest engine: slippage, fees, and risk-based position sizing.
package execution

import (
	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

// SlippageModel turns a quoted price into an executable price. Models are
// adverse by construction: buys execute at or above the quote, sells at or
// below it.
type SlippageModel interface {
	// Apply returns the executed price for a fill of quantity at the quoted
	// price. volume is the bar volume and may be zero when unknown.
	// Apply fails on a non-positive quoted price; callers are expected to
	// reject those before asking for a fill.
	Apply(quoted decimal.Decimal, quantity int64, side core.Side, volume int64) (decimal.Decimal, error)
}

// FixedSlippageModel applies a constant basis-point penalty on every fill.
type FixedSlippageModel struct {
	SlippageBps float64
}

// NewFixedSlippageModel returns a FixedSlippageModel with the given rate.
func NewFixedSlippageModel(slippageBps float64) *FixedSlippageModel {
	return &FixedSlippageModel{SlippageBps: slippageBps}
}

func (m *FixedSlippageModel) Apply(quoted decimal.Decimal, quantity int64, side core.Side, volume int64) (decimal.Decimal, error) {
	if !quoted.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}

	factor := decimal.NewFromFloat(m.SlippageBps / 10000.0)
	if side == core.SideBuy {
		return quoted.Mul(decimal.NewFromInt(1).Add(factor)), nil
	}
	return quoted.Mul(decimal.NewFromInt(1).Sub(factor)), nil
}

// VolumeSlippageModel adds market impact that grows with the participation
// rate quantity/volume on top of a base basis-point rate.
type VolumeSlippageModel struct {
	BaseBps            float64
	VolumeImpactFactor float64
}

// NewVolumeSlippageModel returns a VolumeSlippageModel with the given base
// rate and impact factor.
func NewVolumeSlippageModel(baseBps, volumeImpactFactor float64) *VolumeSlippageModel {
	return &VolumeSlippageModel{BaseBps: baseBps, VolumeImpactFactor: volumeImpactFactor}
}

func (m *VolumeSlippageModel) Apply(quoted decimal.Decimal, quantity int64, side core.Side, volume int64) (decimal.Decimal, error) {
	if !quoted.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}

	total := m.BaseBps / 10000.0
	if volume > 0 {
		participation := float64(quantity) / float64(volume)
		total += m.VolumeImpactFactor * participation
	}

	factor := decimal.NewFromFloat(total)
	if side == core.SideBuy {
		return quoted.Mul(decimal.NewFromInt(1).Add(factor)), nil
	}
	return quoted.Mul(decimal.NewFromInt(1).Sub(factor)), nil
}
