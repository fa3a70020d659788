package indicator

import (
	"math"
	"testing"
)

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma := SMA(prices, 3)

	expected := []float64{11, 12, 13, 14}

	if len(sma) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(sma))
	}

	for i, v := range expected {
		if sma[i] != v {
			t.Errorf("sma[%d] = %f, want %f", i, sma[i], v)
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	sma := SMA([]float64{10, 11}, 5)
	if len(sma) != 0 {
		t.Errorf("expected empty slice, got %d values", len(sma))
	}
}

func TestEMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := EMA(prices, 3)

	if len(ema) != 4 {
		t.Fatalf("expected 4 values, got %d", len(ema))
	}

	// First EMA = SMA = 11
	if ema[0] != 11 {
		t.Errorf("first EMA should equal SMA, got %f", ema[0])
	}

	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("EMA should be increasing on a rising series, ema[%d]=%f", i, ema[i])
		}
	}
}

func TestStdDev(t *testing.T) {
	// Sample stddev of [2,4,4,4,5,5,7,9] = 2.138...
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := StdDev(values)
	if !almostEqual(got, 2.13809, 0.0001) {
		t.Errorf("StdDev = %f, want ~2.13809", got)
	}

	if StdDev([]float64{5}) != 0 {
		t.Error("StdDev of a single sample should be 0")
	}
}

func TestATR(t *testing.T) {
	highs := []float64{12, 13, 14, 13, 15}
	lows := []float64{10, 11, 12, 11, 13}
	closes := []float64{11, 12, 13, 12, 14}

	atr := ATR(highs, lows, closes, 2)
	if len(atr) != 3 {
		t.Fatalf("expected 3 values, got %d", len(atr))
	}
	for i, v := range atr {
		if v <= 0 {
			t.Errorf("atr[%d] = %f, want > 0", i, v)
		}
	}
}

func TestRollingVWAP(t *testing.T) {
	prices := []float64{10, 20}
	volumes := []int64{100, 300}

	vwap := RollingVWAP(prices, volumes)
	if len(vwap) != 2 {
		t.Fatalf("expected 2 values, got %d", len(vwap))
	}
	if vwap[0] != 10 {
		t.Errorf("vwap[0] = %f, want 10", vwap[0])
	}
	// (10*100 + 20*300) / 400 = 17.5
	if vwap[1] != 17.5 {
		t.Errorf("vwap[1] = %f, want 17.5", vwap[1])
	}
}

func TestRollingVWAP_ZeroVolume(t *testing.T) {
	vwap := RollingVWAP([]float64{42, 43}, []int64{0, 0})
	if vwap[0] != 42 || vwap[1] != 43 {
		t.Errorf("zero-volume vwap should fall back to price, got %v", vwap)
	}
}

func TestOLSSlope(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 4.2, 6.3, 8.4, 10.5}

	slope := OLSSlope(x, y)
	if !almostEqual(slope, 2.1, 1e-9) {
		t.Errorf("OLSSlope = %f, want 2.1", slope)
	}

	if OLSSlope([]float64{3, 3, 3}, []float64{1, 2, 3}) != 0 {
		t.Error("zero-variance x should return 0")
	}
}

func TestAR1(t *testing.T) {
	// Strongly mean-reverting alternating series -> negative coefficient.
	alternating := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	if got := AR1(alternating); got >= 0 {
		t.Errorf("AR1 of alternating series = %f, want < 0", got)
	}

	// Random walk-ish trending series stays near 1.
	trending := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	if got := AR1(trending); got < 0.9 {
		t.Errorf("AR1 of trending series = %f, want >= 0.9", got)
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
