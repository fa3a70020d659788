// Package pair_spread implements statistical-arbitrage trading of
// cointegrated pairs via the z-score of their hedge-ratio spread.
package pair_spread

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/indicator"
	"github.com/paperline/paperline/internal/strategy"
)

// PairSpread scans all symbol pairs for a mean-reverting spread, shorts
// the rich leg and buys the cheap leg past the entry z-score, and closes
// both legs once the spread normalizes.
//
// Stationarity is screened with the spread's lag-1 autoregressive
// coefficient: a coefficient below the threshold stands in for the
// cointegration p-value test of the full Engle-Granger procedure.
type PairSpread struct {
	lookbackPeriods int
	entryZScore     float64
	exitZScore      float64
	maxAR1          float64
}

// New creates a PairSpread generator.
func New(lookbackPeriods int, entryZScore, exitZScore, maxAR1 float64) *PairSpread {
	return &PairSpread{
		lookbackPeriods: lookbackPeriods,
		entryZScore:     entryZScore,
		exitZScore:      exitZScore,
		maxAR1:          maxAR1,
	}
}

func (p *PairSpread) Name() string { return "pair_spread" }

func (p *PairSpread) Description() string {
	return fmt.Sprintf("Pair spread arbitrage (lookback %d, entry %.1fz, exit %.1fz)",
		p.lookbackPeriods, p.entryZScore, p.exitZScore)
}

func (p *PairSpread) Lookback() int { return p.lookbackPeriods }

func (p *PairSpread) Init(cfg strategy.Config) error {
	if lookback, ok := cfg.Params["lookback_periods"].(int); ok {
		p.lookbackPeriods = lookback
	}
	if entry, ok := cfg.Params["entry_z_score"].(float64); ok {
		p.entryZScore = entry
	}
	if exit, ok := cfg.Params["exit_z_score"].(float64); ok {
		p.exitZScore = exit
	}
	if maxAR1, ok := cfg.Params["max_ar1"].(float64); ok {
		p.maxAR1 = maxAR1
	}
	return nil
}

func (p *PairSpread) Generate(ts time.Time, windows map[string][]core.Bar, positions map[string]int64) []strategy.SignalResult {
	var signals []strategy.SignalResult

	symbols := make([]string, 0, len(windows))
	for symbol, bars := range windows {
		if len(bars) >= p.lookbackPeriods {
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) < 2 {
		return signals
	}
	sort.Strings(symbols)

	closes := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		bars := windows[symbol]
		bars = bars[len(bars)-p.lookbackPeriods:]
		prices := make([]float64, len(bars))
		for i, b := range bars {
			prices[i] = b.CloseF()
		}
		closes[symbol] = prices
	}

	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			symbol1, symbol2 := symbols[i], symbols[j]
			price1, price2 := closes[symbol1], closes[symbol2]

			hedgeRatio := indicator.OLSSlope(price2, price1)
			spread := make([]float64, len(price1))
			for k := range price1 {
				spread[k] = price1[k] - hedgeRatio*price2[k]
			}

			if indicator.AR1(spread) >= p.maxAR1 {
				continue // spread not mean-reverting
			}

			spreadMean := indicator.Mean(spread)
			spreadStd := populationStd(spread, spreadMean)
			if spreadStd == 0 {
				continue
			}
			zScore := (spread[len(spread)-1] - spreadMean) / spreadStd

			pos1 := positions[symbol1]
			pos2 := positions[symbol2]
			inPosition := pos1 != 0 || pos2 != 0

			entryStrength := math.Min(math.Abs(zScore)/p.entryZScore, 1.0)

			switch {
			case !inPosition && zScore > p.entryZScore:
				signals = append(signals,
					p.signal(symbol1, -1, entryStrength, zScore),
					p.signal(symbol2, 1, entryStrength, zScore),
				)
			case !inPosition && zScore < -p.entryZScore:
				signals = append(signals,
					p.signal(symbol1, 1, entryStrength, zScore),
					p.signal(symbol2, -1, entryStrength, zScore),
				)
			case inPosition && math.Abs(zScore) < p.exitZScore:
				if pos1 != 0 {
					signals = append(signals, p.signal(symbol1, -sign(pos1), 1.0, zScore))
				}
				if pos2 != 0 {
					signals = append(signals, p.signal(symbol2, -sign(pos2), 1.0, zScore))
				}
			}
		}
	}

	return signals
}

func (p *PairSpread) signal(symbol string, direction int, strength, zScore float64) strategy.SignalResult {
	return strategy.SignalResult{
		Symbol:    symbol,
		Direction: direction,
		Strength:  strength,
		Diagnostics: map[string]float64{
			"z_score": zScore,
		},
	}
}

// populationStd matches numpy's default ddof=0 standard deviation used for
// spread z-scores.
func populationStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func sign(q int64) int {
	if q > 0 {
		return 1
	}
	if q < 0 {
		return -1
	}
	return 0
}
