// Package vwap_revert implements intraday mean reversion to the
// volume-weighted average price with band entries and exits.
package vwap_revert

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/indicator"
	"github.com/paperline/paperline/internal/strategy"
)

// VWAPRevert fades moves beyond an entry band around VWAP and closes the
// position once price returns inside the exit band. Entries require a
// volume surge over the rolling average.
type VWAPRevert struct {
	lookbackPeriods  int
	entryStd         float64
	exitStd          float64
	volumeMultiplier float64
}

// New creates a VWAPRevert generator with the given band parameters.
func New(lookbackPeriods int, entryStd, exitStd, volumeMultiplier float64) *VWAPRevert {
	return &VWAPRevert{
		lookbackPeriods:  lookbackPeriods,
		entryStd:         entryStd,
		exitStd:          exitStd,
		volumeMultiplier: volumeMultiplier,
	}
}

func (v *VWAPRevert) Name() string { return "vwap_revert" }

func (v *VWAPRevert) Description() string {
	return fmt.Sprintf("Mean reversion to VWAP (lookback %d, entry %.1fσ, exit %.1fσ)",
		v.lookbackPeriods, v.entryStd, v.exitStd)
}

func (v *VWAPRevert) Lookback() int { return v.lookbackPeriods }

func (v *VWAPRevert) Init(cfg strategy.Config) error {
	if lookback, ok := cfg.Params["lookback_periods"].(int); ok {
		v.lookbackPeriods = lookback
	}
	if entry, ok := cfg.Params["entry_std"].(float64); ok {
		v.entryStd = entry
	}
	if exit, ok := cfg.Params["exit_std"].(float64); ok {
		v.exitStd = exit
	}
	if mult, ok := cfg.Params["volume_filter_multiplier"].(float64); ok {
		v.volumeMultiplier = mult
	}
	return nil
}

func (v *VWAPRevert) Generate(ts time.Time, windows map[string][]core.Bar, positions map[string]int64) []strategy.SignalResult {
	var signals []strategy.SignalResult

	for _, symbol := range sortedSymbols(windows) {
		bars := windows[symbol]
		if len(bars) < v.lookbackPeriods {
			continue
		}
		bars = bars[len(bars)-v.lookbackPeriods:]

		closes := make([]float64, len(bars))
		volumes := make([]int64, len(bars))
		for i, b := range bars {
			closes[i] = b.CloseF()
			volumes[i] = b.Volume
		}

		vwapSeries := indicator.RollingVWAP(closes, volumes)
		vwap := vwapSeries[len(vwapSeries)-1]
		priceStd := indicator.StdDev(closes)
		if priceStd == 0 {
			continue
		}

		lowerBand := vwap - v.entryStd*priceStd
		upperBand := vwap + v.entryStd*priceStd
		exitLower := vwap - v.exitStd*priceStd
		exitUpper := vwap + v.exitStd*priceStd

		var volSum float64
		for _, vol := range volumes {
			volSum += float64(vol)
		}
		avgVolume := volSum / float64(len(volumes))
		currentVolume := float64(volumes[len(volumes)-1])

		lastPrice := closes[len(closes)-1]
		currentPos := positions[symbol]

		direction := 0
		strength := 1.0

		if currentVolume > avgVolume*v.volumeMultiplier {
			switch {
			case currentPos == 0:
				if lastPrice < lowerBand {
					direction = 1
					strength = math.Abs(lastPrice-vwap) / priceStd
				} else if lastPrice > upperBand {
					direction = -1
					strength = math.Abs(lastPrice-vwap) / priceStd
				}
			case currentPos > 0:
				if lastPrice >= exitLower {
					direction = -1
				}
			case currentPos < 0:
				if lastPrice <= exitUpper {
					direction = 1
				}
			}
		}

		if direction != 0 {
			signals = append(signals, strategy.SignalResult{
				Symbol:    symbol,
				Direction: direction,
				Strength:  math.Min(strength, 1.0),
				Diagnostics: map[string]float64{
					"vwap":   vwap,
					"price":  lastPrice,
					"volume": currentVolume,
				},
			})
		}
	}

	return signals
}

// sortedSymbols fixes the iteration order so output is reproducible.
func sortedSymbols(windows map[string][]core.Bar) []string {
	symbols := make([]string, 0, len(windows))
	for s := range windows {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
