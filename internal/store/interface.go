package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/engine"
)

// BarStore persists historical bars and serves them back to the
// engine ordered by (timestamp, symbol).
type BarStore interface {
	// SaveBars upserts bars, deduplicating on (symbol, timeframe,
	// timestamp).
	SaveBars(ctx context.Context, bars []core.Bar) error

	// FetchBars returns bars for the universe inside [start, end],
	// ordered by timestamp then symbol.
	FetchBars(ctx context.Context, universe []string, start, end time.Time) ([]core.Bar, error)

	// Symbols lists every symbol with at least one stored bar.
	Symbols(ctx context.Context) ([]string, error)
}

// RunStore persists completed and failed backtest results.
type RunStore interface {
	SaveRun(ctx context.Context, result *engine.Result) error
	GetRun(ctx context.Context, runID string) (*engine.Result, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is the lightweight listing row for a stored run.
type RunSummary struct {
	RunID       string          `json:"run_id"`
	Generator   string          `json:"generator"`
	State       engine.State    `json:"state"`
	FinalEquity decimal.Decimal `json:"final_equity"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
}
