package vwap_revert

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

func makeBars(closes []float64, volumes []int64) []core.Bar {
	base := time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)
	bars := make([]core.Bar, len(closes))
	for i := range closes {
		c := decimal.NewFromFloat(closes[i])
		bars[i] = core.Bar{
			Symbol:    "RELIANCE",
			Timeframe: core.TimeframeMinute,
			Open:      c,
			High:      c.Add(decimal.NewFromInt(1)),
			Low:       c.Sub(decimal.NewFromInt(1)),
			Close:     c,
			Volume:    volumes[i],
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return bars
}

func TestVWAPRevert_EntryBelowBand(t *testing.T) {
	gen := New(5, 0.5, 0.5, 1.5)

	// Price collapses well below VWAP on a volume spike.
	windows := map[string][]core.Bar{
		"RELIANCE": makeBars(
			[]float64{100, 101, 99, 100, 85},
			[]int64{1000, 1000, 1000, 1000, 5000},
		),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{})
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}

	sig := signals[0]
	if sig.Symbol != "RELIANCE" {
		t.Errorf("Symbol = %s", sig.Symbol)
	}
	if sig.Direction != 1 {
		t.Errorf("Direction = %d, want 1 (buy the dip)", sig.Direction)
	}
	if sig.Strength <= 0 || sig.Strength > 1 {
		t.Errorf("Strength = %f, want in (0, 1]", sig.Strength)
	}
	if _, ok := sig.Diagnostics["vwap"]; !ok {
		t.Error("diagnostics should include vwap")
	}
}

func TestVWAPRevert_ExitLongInsideBand(t *testing.T) {
	gen := New(5, 0.5, 0.5, 1.5)

	windows := map[string][]core.Bar{
		"RELIANCE": makeBars(
			[]float64{100, 101, 99, 100, 100},
			[]int64{1000, 1000, 1000, 1000, 5000},
		),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{"RELIANCE": 10})
	if len(signals) != 1 {
		t.Fatalf("expected 1 exit signal, got %d", len(signals))
	}
	if signals[0].Direction != -1 {
		t.Errorf("Direction = %d, want -1 (close long)", signals[0].Direction)
	}
}

func TestVWAPRevert_NoVolumeSurgeNoSignal(t *testing.T) {
	gen := New(5, 0.5, 0.5, 1.5)

	windows := map[string][]core.Bar{
		"RELIANCE": makeBars(
			[]float64{100, 101, 99, 100, 85},
			[]int64{1000, 1000, 1000, 1000, 1000},
		),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{})
	if len(signals) != 0 {
		t.Errorf("expected no signals without a volume surge, got %d", len(signals))
	}
}

func TestVWAPRevert_SkipsShortWindows(t *testing.T) {
	gen := New(20, 2.0, 0.5, 1.5)

	windows := map[string][]core.Bar{
		"TCS": makeBars([]float64{100, 101, 102}, []int64{1000, 1000, 1000}),
	}

	signals := gen.Generate(time.Now(), windows, map[string]int64{})
	if len(signals) != 0 {
		t.Errorf("short windows must be skipped silently, got %d signals", len(signals))
	}
}

func TestVWAPRevert_Deterministic(t *testing.T) {
	gen := New(5, 0.5, 0.5, 1.5)
	windows := map[string][]core.Bar{
		"INFY": makeBars(
			[]float64{100, 101, 99, 100, 85},
			[]int64{1000, 1000, 1000, 1000, 5000},
		),
		"TCS": makeBars(
			[]float64{200, 201, 199, 200, 170},
			[]int64{2000, 2000, 2000, 2000, 9000},
		),
	}

	ts := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	first := gen.Generate(ts, windows, map[string]int64{})
	second := gen.Generate(ts, windows, map[string]int64{})

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated generation over identical input must be bit-identical")
	}
	if len(first) != 2 {
		t.Fatalf("expected signals for both symbols, got %d", len(first))
	}
	if first[0].Symbol != "INFY" || first[1].Symbol != "TCS" {
		t.Errorf("signals must come out in sorted symbol order: %v", []string{first[0].Symbol, first[1].Symbol})
	}
}
