package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

// State tracks the lifecycle of a single backtest run.
type State string

const (
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// OrderRecord is an executed fill. Quantity is always positive; Side
// carries the direction.
type OrderRecord struct {
	Symbol        string          `json:"symbol"`
	Side          core.Side       `json:"side"`
	Quantity      int64           `json:"quantity"`
	QuotedPrice   decimal.Decimal `json:"quoted_price"`
	ExecutedPrice decimal.Decimal `json:"executed_price"`
	Commission    decimal.Decimal `json:"commission"`
	Timestamp     time.Time       `json:"timestamp"`
}

// EquityPoint is the account snapshot taken after each bar group is
// processed. Drawdown is the fraction below the running peak, in [0, 1].
type EquityPoint struct {
	Timestamp      time.Time       `json:"timestamp"`
	Equity         decimal.Decimal `json:"equity"`
	Cash           decimal.Decimal `json:"cash"`
	PositionsValue decimal.Decimal `json:"positions_value"`
	PeakEquity     decimal.Decimal `json:"peak_equity"`
	Return         *float64        `json:"return,omitempty"`
	Drawdown       float64         `json:"drawdown"`
}

// WeeklyReturn aggregates one ISO week of the equity curve together
// with the fills that landed inside it.
type WeeklyReturn struct {
	Year       int             `json:"year"`
	Week       int             `json:"week"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Return     float64         `json:"return"`
	TradeCount int             `json:"trade_count"`
	Turnover   decimal.Decimal `json:"turnover"`
	Commission decimal.Decimal `json:"commission"`
	Slippage   decimal.Decimal `json:"slippage"`
}

// MetricsSnapshot is computed once, when a run finishes. Ratio fields
// are nil when the underlying statistic is undefined for the sample.
type MetricsSnapshot struct {
	TotalReturn             float64         `json:"total_return"`
	AnnualReturn            float64         `json:"annual_return"`
	SharpeRatio             *float64        `json:"sharpe_ratio,omitempty"`
	SortinoRatio            *float64        `json:"sortino_ratio,omitempty"`
	MaxDrawdown             float64         `json:"max_drawdown"`
	MaxDrawdownDurationDays int             `json:"max_drawdown_duration_days"`
	TotalTrades             int             `json:"total_trades"`
	WinningTrades           int             `json:"winning_trades"`
	LosingTrades            int             `json:"losing_trades"`
	WinRate                 float64         `json:"win_rate"`
	AvgWin                  decimal.Decimal `json:"avg_win"`
	AvgLoss                 decimal.Decimal `json:"avg_loss"`
	ProfitFactor            *float64        `json:"profit_factor,omitempty"`
	Turnover                decimal.Decimal `json:"turnover"`
	TotalCommission         decimal.Decimal `json:"total_commission"`
	TotalSlippage           decimal.Decimal `json:"total_slippage"`
}

// Result is the full record of a backtest run.
type Result struct {
	RunID          string           `json:"run_id"`
	Generator      string           `json:"generator"`
	Universe       []string         `json:"universe"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	State          State            `json:"state"`
	Error          string           `json:"error,omitempty"`
	InitialCapital decimal.Decimal  `json:"initial_capital"`
	FinalEquity    decimal.Decimal  `json:"final_equity"`
	SignalCount    int              `json:"signal_count"`
	Orders         []OrderRecord    `json:"orders"`
	EquityCurve    []EquityPoint    `json:"equity_curve"`
	Weekly         []WeeklyReturn   `json:"weekly"`
	Metrics        *MetricsSnapshot `json:"metrics,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
}
