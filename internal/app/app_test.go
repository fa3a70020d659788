package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/paperline/paperline/internal/config"
	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/engine"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Storage.Backend = "memory"
	cfg.Storage.DSN = ""
	cfg.Backtest.InitialCapital = 100000
	cfg.Backtest.Universe = []string{"AAA"}
	cfg.Backtest.Start = "2026-01-01"
	cfg.Backtest.End = "2026-03-01"
	return cfg
}

func seedBars(t *testing.T, a *App, days int) {
	t.Helper()
	bars, _ := a.Stores()
	var batch []core.Bar
	price := 100.0
	ts := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		// Deterministic wobble around 100 keeps the generators busy
		// without needing market data.
		if i%2 == 0 {
			price += 1.5
		} else {
			price -= 1.0
		}
		p := decimal.NewFromFloat(price)
		batch = append(batch, core.Bar{
			Symbol:    "AAA",
			Timeframe: core.TimeframeDaily,
			Open:      p,
			High:      p.Add(decimal.NewFromInt(1)),
			Low:       p.Sub(decimal.NewFromInt(1)),
			Close:     p,
			Volume:    10000,
			Timestamp: ts,
		})
		ts = ts.AddDate(0, 0, 1)
		if ts.Weekday() == time.Saturday {
			ts = ts.AddDate(0, 0, 2)
		}
	}
	require.NoError(t, bars.SaveBars(context.Background(), batch))
}

func TestNew_ValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Backtest.InitialCapital = -1
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestNew_RejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.Strategies = map[string]config.StrategyConfig{
		"momentum_magic": {Enabled: true},
	}
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestApp_Generators(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	names := a.Generators()
	require.Contains(t, names, "vwap_revert")
	require.Contains(t, names, "ma_breakout")
	require.Contains(t, names, "pair_spread")
}

func TestApp_RunBacktest(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()
	seedBars(t, a, 40)

	ctx := context.Background()
	result, evaluation, err := a.RunBacktest(ctx, "vwap_revert")
	require.NoError(t, err)
	require.Equal(t, engine.StateCompleted, result.State)
	require.NotEmpty(t, result.EquityCurve)
	require.NotNil(t, evaluation)
	require.NotEmpty(t, evaluation.Badge)

	// The run is persisted and listable.
	summaries, err := a.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, result.RunID, summaries[0].RunID)
}

func TestApp_RunBacktest_UnknownStrategy(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	_, _, err = a.RunBacktest(context.Background(), "nope")
	require.Error(t, err)
}

func TestApp_RunBacktest_BadDates(t *testing.T) {
	cfg := testConfig()
	cfg.Backtest.Start = "not-a-date"
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	_, _, err = a.RunBacktest(context.Background(), "vwap_revert")
	require.ErrorIs(t, err, core.ErrInvalidDateRange)
}

func TestApp_EvaluateRun(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()
	seedBars(t, a, 40)

	ctx := context.Background()
	result, evaluation, err := a.RunBacktest(ctx, "ma_breakout")
	require.NoError(t, err)

	again, err := a.EvaluateRun(ctx, result.RunID)
	require.NoError(t, err)
	require.Equal(t, evaluation.Badge, again.Badge)
	require.Equal(t, evaluation.MeanReturn, again.MeanReturn)

	_, err = a.EvaluateRun(ctx, "missing-run")
	require.ErrorIs(t, err, core.ErrNoData)
}

func TestApp_ArchivesCompletedRuns(t *testing.T) {
	cfg := testConfig()
	cfg.Archive.Enabled = true
	cfg.Archive.Type = "localfs"
	cfg.Archive.Path = t.TempDir()

	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	seedBars(t, a, 40)

	ctx := context.Background()
	result, _, err := a.RunBacktest(ctx, "vwap_revert")
	require.NoError(t, err)

	loaded, err := a.archiver.LoadRun(ctx, result.StartedAt.Year(), result.RunID)
	require.NoError(t, err)
	require.Equal(t, result.RunID, loaded.RunID)
}
