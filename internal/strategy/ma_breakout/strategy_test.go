package ma_breakout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

func makeBars(highs, lows, closes []float64, volumes []int64) []core.Bar {
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, len(closes))
	for i := range closes {
		bars[i] = core.Bar{
			Symbol:    "NIFTYBEES",
			Timeframe: core.TimeframeDaily,
			Open:      decimal.NewFromFloat(closes[i]),
			High:      decimal.NewFromFloat(highs[i]),
			Low:       decimal.NewFromFloat(lows[i]),
			Close:     decimal.NewFromFloat(closes[i]),
			Volume:    volumes[i],
			Timestamp: base.AddDate(0, 0, i),
		}
	}
	return bars
}

func crossoverWindow() map[string][]core.Bar {
	// Drifts down, then a high-volume breakout bar forces the fast MA
	// through the slow MA.
	return map[string][]core.Bar{
		"NIFTYBEES": makeBars(
			[]float64{101, 100, 99, 100, 110},
			[]float64{99, 98, 97, 98, 99},
			[]float64{100, 99, 98, 99, 108},
			[]int64{1000, 1000, 1000, 1000, 5000},
		),
	}
}

func TestMABreakout_GoldenCrossEntry(t *testing.T) {
	gen := New(2, 3, 3, 2, 1.5, 0.1)

	signals := gen.Generate(time.Now(), crossoverWindow(), map[string]int64{})
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	sig := signals[0]
	if sig.Direction != 1 {
		t.Errorf("Direction = %d, want 1", sig.Direction)
	}
	if sig.Strength != 1.0 {
		t.Errorf("Strength = %f, want 1.0", sig.Strength)
	}
	if sig.Diagnostics["fast_ma"] <= sig.Diagnostics["slow_ma"] {
		t.Error("fast MA should be above slow MA on a golden cross")
	}
}

func TestMABreakout_ExitLongOnDeathCross(t *testing.T) {
	gen := New(2, 3, 3, 2, 1.5, 0.1)

	// Declining closes keep the fast MA below the slow MA; holding a long
	// position we expect an unconditional exit signal.
	windows := map[string][]core.Bar{
		"NIFTYBEES": makeBars(
			[]float64{111, 110, 107, 104, 101},
			[]float64{109, 106, 103, 100, 99},
			[]float64{110, 107, 104, 101, 100},
			[]int64{1000, 1000, 1000, 1000, 1000},
		),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{"NIFTYBEES": 25})
	if len(signals) != 1 {
		t.Fatalf("expected 1 exit signal, got %d", len(signals))
	}
	if signals[0].Direction != -1 {
		t.Errorf("Direction = %d, want -1", signals[0].Direction)
	}
}

func TestMABreakout_NoVolumeSurgeNoEntry(t *testing.T) {
	gen := New(2, 3, 3, 2, 1.5, 0.1)

	windows := crossoverWindow()
	for i := range windows["NIFTYBEES"] {
		windows["NIFTYBEES"][i].Volume = 1000
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{})
	if len(signals) != 0 {
		t.Errorf("expected no entry without volume confirmation, got %d", len(signals))
	}
}

func TestMABreakout_SkipsShortWindows(t *testing.T) {
	gen := New(15, 30, 20, 14, 2.0, 1.5)

	windows := map[string][]core.Bar{
		"SBIN": makeBars(
			[]float64{101, 102},
			[]float64{99, 100},
			[]float64{100, 101},
			[]int64{1000, 1000},
		),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{})
	if len(signals) != 0 {
		t.Errorf("short windows must be skipped, got %d signals", len(signals))
	}
}
