// Package ma_breakout implements a moving-average crossover entry filtered
// by a volume surge and an ATR range breakout.
package ma_breakout

import (
	"fmt"
	"sort"
	"time"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/indicator"
	"github.com/paperline/paperline/internal/strategy"
)

// MABreakout goes long on a golden cross confirmed by volume and an ATR
// breakout, short on the mirrored death cross, and exits on the opposite
// crossover.
type MABreakout struct {
	fastPeriod       int
	slowPeriod       int
	volumeSMAPeriod  int
	volumeMultiplier float64
	atrPeriod        int
	atrMultiplier    float64
}

// New creates an MABreakout generator with the given periods.
func New(fastPeriod, slowPeriod, volumeSMAPeriod, atrPeriod int, volumeMultiplier, atrMultiplier float64) *MABreakout {
	return &MABreakout{
		fastPeriod:       fastPeriod,
		slowPeriod:       slowPeriod,
		volumeSMAPeriod:  volumeSMAPeriod,
		volumeMultiplier: volumeMultiplier,
		atrPeriod:        atrPeriod,
		atrMultiplier:    atrMultiplier,
	}
}

func (m *MABreakout) Name() string { return "ma_breakout" }

func (m *MABreakout) Description() string {
	return fmt.Sprintf("MA breakout (%d/%d) with volume and ATR filters", m.fastPeriod, m.slowPeriod)
}

func (m *MABreakout) Lookback() int {
	lookback := m.slowPeriod
	if m.volumeSMAPeriod > lookback {
		lookback = m.volumeSMAPeriod
	}
	if m.atrPeriod > lookback {
		lookback = m.atrPeriod
	}
	// One extra bar so the previous crossover state exists.
	return lookback + 1
}

func (m *MABreakout) Init(cfg strategy.Config) error {
	if fast, ok := cfg.Params["fast_period"].(int); ok {
		m.fastPeriod = fast
	}
	if slow, ok := cfg.Params["slow_period"].(int); ok {
		m.slowPeriod = slow
	}
	if volPeriod, ok := cfg.Params["volume_sma_period"].(int); ok {
		m.volumeSMAPeriod = volPeriod
	}
	if volMult, ok := cfg.Params["volume_multiplier"].(float64); ok {
		m.volumeMultiplier = volMult
	}
	if atrPeriod, ok := cfg.Params["atr_period"].(int); ok {
		m.atrPeriod = atrPeriod
	}
	if atrMult, ok := cfg.Params["atr_multiplier"].(float64); ok {
		m.atrMultiplier = atrMult
	}
	return nil
}

func (m *MABreakout) Generate(ts time.Time, windows map[string][]core.Bar, positions map[string]int64) []strategy.SignalResult {
	var signals []strategy.SignalResult

	symbols := make([]string, 0, len(windows))
	for s := range windows {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		bars := windows[symbol]
		if len(bars) < m.Lookback() {
			continue
		}

		n := len(bars)
		closes := make([]float64, n)
		highs := make([]float64, n)
		lows := make([]float64, n)
		rawVolumes := make([]float64, n)
		for i, b := range bars {
			closes[i] = b.CloseF()
			highs[i], _ = b.High.Float64()
			lows[i], _ = b.Low.Float64()
			rawVolumes[i] = float64(b.Volume)
		}

		fastMA := indicator.SMA(closes, m.fastPeriod)
		slowMA := indicator.SMA(closes, m.slowPeriod)
		volumeSMA := indicator.SMA(rawVolumes, m.volumeSMAPeriod)
		atr := indicator.ATR(highs, lows, closes, m.atrPeriod)

		if len(fastMA) < 2 || len(slowMA) < 2 || len(volumeSMA) < 1 || len(atr) < 1 {
			continue
		}

		currFast, prevFast := fastMA[len(fastMA)-1], fastMA[len(fastMA)-2]
		currSlow, prevSlow := slowMA[len(slowMA)-1], slowMA[len(slowMA)-2]
		atrVal := atr[len(atr)-1]

		volume := rawVolumes[n-1]
		volumeSurge := volume > volumeSMA[len(volumeSMA)-1]*m.volumeMultiplier

		breakoutUp := highs[n-1] > highs[n-2]+m.atrMultiplier*atrVal
		breakoutDown := lows[n-1] < lows[n-2]-m.atrMultiplier*atrVal

		currentPos := positions[symbol]

		direction := 0
		switch {
		case currentPos == 0:
			if currFast > currSlow && prevFast <= prevSlow && volumeSurge && breakoutUp {
				direction = 1
			} else if currFast < currSlow && prevFast >= prevSlow && volumeSurge && breakoutDown {
				direction = -1
			}
		case currentPos > 0:
			if currFast < currSlow {
				direction = -1
			}
		case currentPos < 0:
			if currFast > currSlow {
				direction = 1
			}
		}

		if direction != 0 {
			signals = append(signals, strategy.SignalResult{
				Symbol:    symbol,
				Direction: direction,
				Strength:  1.0,
				Diagnostics: map[string]float64{
					"fast_ma": currFast,
					"slow_ma": currSlow,
					"volume":  volume,
					"atr":     atrVal,
				},
			})
		}
	}

	return signals
}
