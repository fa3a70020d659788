package execution

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

func TestFixedSlippageModel_Apply(t *testing.T) {
	model := NewFixedSlippageModel(5)
	quoted := decimal.RequireFromString("1000")

	buy, err := model.Apply(quoted, 100, core.SideBuy, 0)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !buy.Equal(decimal.RequireFromString("1000.5")) {
		t.Errorf("buy executed at %s, want 1000.5", buy)
	}

	sell, err := model.Apply(quoted, 100, core.SideSell, 0)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !sell.Equal(decimal.RequireFromString("999.5")) {
		t.Errorf("sell executed at %s, want 999.5", sell)
	}
}

func TestFixedSlippageModel_Monotone(t *testing.T) {
	model := NewFixedSlippageModel(12.5)
	quoted := decimal.RequireFromString("842.35")

	buy, _ := model.Apply(quoted, 10, core.SideBuy, 0)
	sell, _ := model.Apply(quoted, 10, core.SideSell, 0)

	if buy.LessThan(quoted) {
		t.Errorf("buy executed below quote: %s < %s", buy, quoted)
	}
	if sell.GreaterThan(quoted) {
		t.Errorf("sell executed above quote: %s > %s", sell, quoted)
	}
}

func TestFixedSlippageModel_RejectsNonPositivePrice(t *testing.T) {
	model := NewFixedSlippageModel(5)
	_, err := model.Apply(decimal.Zero, 100, core.SideBuy, 0)
	if !errors.Is(err, core.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	_, err = model.Apply(decimal.RequireFromString("-1"), 100, core.SideSell, 0)
	if !errors.Is(err, core.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestVolumeSlippageModel_ImpactGrowsWithParticipation(t *testing.T) {
	model := NewVolumeSlippageModel(2, 0.1)
	quoted := decimal.RequireFromString("1000")

	small, err := model.Apply(quoted, 100, core.SideBuy, 100000)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	large, err := model.Apply(quoted, 50000, core.SideBuy, 100000)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !large.GreaterThan(small) {
		t.Errorf("larger participation should cost more: %s <= %s", large, small)
	}
	if small.LessThan(quoted) {
		t.Errorf("buy executed below quote: %s", small)
	}
}

func TestVolumeSlippageModel_ZeroVolumeFallsBackToBase(t *testing.T) {
	model := NewVolumeSlippageModel(2, 0.1)
	quoted := decimal.RequireFromString("1000")

	got, err := model.Apply(quoted, 100, core.SideSell, 0)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	// Base 2 bps only: 1000 * (1 - 0.0002) = 999.8
	if !got.Equal(decimal.RequireFromString("999.8")) {
		t.Errorf("executed at %s, want 999.8", got)
	}
}
