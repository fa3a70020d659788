package strategy

import (
	"time"

	"github.com/paperline/paperline/internal/core"
)

// Config holds generator configuration.
type Config struct {
	Enabled bool
	Params  map[string]any
}

// SignalResult is one directional signal for one instrument.
type SignalResult struct {
	Symbol string
	// Direction is -1, 0 or 1.
	Direction int
	// Strength is in [0, 1]; direction and strength together feed the
	// risk sizer.
	Strength float64
	// Diagnostics carries the indicator values behind the decision.
	Diagnostics map[string]float64
}

// Generator produces signals from per-symbol bar windows and current
// positions. Implementations must be deterministic: fixed bars and fixed
// parameters always produce bit-identical output, so no wall-clock or
// unseeded randomness is allowed inside a generator.
//
// A symbol whose window holds fewer bars than Lookback is silently
// skipped, never an error.
type Generator interface {
	Name() string
	Description() string
	// Lookback is the minimum number of bars a symbol needs before the
	// generator will consider it.
	Lookback() int
	Init(cfg Config) error
	Generate(ts time.Time, windows map[string][]core.Bar, positions map[string]int64) []SignalResult
}
