package execution

import (
	"testing"

	"github.com/shopspring/decimal"
)

var (
	testPrice  = decimal.RequireFromString("1000")
	testEquity = decimal.RequireFromString("1000000")
)

func TestFixedRiskSizer_Size(t *testing.T) {
	sizer := NewFixedRiskSizer(0.1)

	tests := []struct {
		name     string
		strength float64
		want     int64
	}{
		{name: "full long", strength: 1.0, want: 100},
		{name: "half long", strength: 0.5, want: 50},
		{name: "full short", strength: -1.0, want: -100},
		{name: "half short", strength: -0.5, want: -50},
		{name: "flat", strength: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sizer.Size(tt.strength, testPrice, testEquity, 0, 0)
			if got != tt.want {
				t.Errorf("Size(%v) = %d, want %d", tt.strength, got, tt.want)
			}
		})
	}
}

func TestFixedRiskSizer_TruncatesTowardZero(t *testing.T) {
	sizer := NewFixedRiskSizer(0.1)
	// 100 shares at full strength; 0.333 strength -> 33.3 -> 33, never 34.
	got := sizer.Size(0.333, testPrice, testEquity, 0, 0)
	if got != 33 {
		t.Errorf("Size(0.333) = %d, want 33", got)
	}
	got = sizer.Size(-0.333, testPrice, testEquity, 0, 0)
	if got != -33 {
		t.Errorf("Size(-0.333) = %d, want -33", got)
	}
}

func TestVolatilityRiskSizer_Size(t *testing.T) {
	sizer := NewVolatilityRiskSizer(0.15, 0.2)

	// scalar = 0.15/0.20 = 0.75; 200 shares * 0.75 = 150
	got := sizer.Size(1.0, testPrice, testEquity, 0, 0.20)
	if got != 150 {
		t.Errorf("Size() = %d, want 150", got)
	}

	// Calm markets scale up but never past the 2x cap.
	capped := sizer.Size(1.0, testPrice, testEquity, 0, 0.01)
	if capped != 400 {
		t.Errorf("Size() with capped scalar = %d, want 400", capped)
	}
}

func TestVolatilityRiskSizer_ZeroVolatility(t *testing.T) {
	sizer := NewVolatilityRiskSizer(0.15, 0.2)
	if got := sizer.Size(1.0, testPrice, testEquity, 0, 0); got != 0 {
		t.Errorf("Size() with zero volatility = %d, want 0", got)
	}
	if got := sizer.Size(1.0, testPrice, testEquity, 0, -0.1); got != 0 {
		t.Errorf("Size() with negative volatility = %d, want 0", got)
	}
}

func TestKellyRiskSizer_Size(t *testing.T) {
	sizer := NewKellyRiskSizer(0.25, 0.15)

	// kelly 0.25*1.0 clamped to 0.15 -> 150 shares
	if got := sizer.Size(1.0, testPrice, testEquity, 0, 0); got != 150 {
		t.Errorf("Size(1.0) = %d, want 150", got)
	}

	// 0.25*0.4 = 0.10, below the cap -> 100 shares
	if got := sizer.Size(0.4, testPrice, testEquity, 0, 0); got != 100 {
		t.Errorf("Size(0.4) = %d, want 100", got)
	}

	// Direction follows the sign of strength.
	if got := sizer.Size(-1.0, testPrice, testEquity, 0, 0); got != -150 {
		t.Errorf("Size(-1.0) = %d, want -150", got)
	}
}

func TestSizers_DegenerateInputs(t *testing.T) {
	sizers := []RiskSizer{
		NewFixedRiskSizer(0.1),
		NewVolatilityRiskSizer(0.15, 0.2),
		NewKellyRiskSizer(0.25, 0.15),
	}

	zero := decimal.Zero
	negative := decimal.RequireFromString("-5")

	for _, s := range sizers {
		if got := s.Size(1.0, zero, testEquity, 0, 0.2); got != 0 {
			t.Errorf("%T: Size with zero price = %d, want 0", s, got)
		}
		if got := s.Size(1.0, testPrice, zero, 0, 0.2); got != 0 {
			t.Errorf("%T: Size with zero equity = %d, want 0", s, got)
		}
		if got := s.Size(1.0, negative, negative, 0, 0.2); got != 0 {
			t.Errorf("%T: Size with negative inputs = %d, want 0", s, got)
		}
	}
}
