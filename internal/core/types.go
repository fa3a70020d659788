package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timeframe identifies the bar aggregation interval.
type Timeframe string

const (
	TimeframeMinute Timeframe = "1m"
	TimeframeFive   Timeframe = "5m"
	TimeframeDaily  Timeframe = "1d"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Bar is one OHLCV observation for an instrument at a timestamp and
// timeframe. Immutable once recorded.
type Bar struct {
	Symbol    string
	Timeframe Timeframe
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
	Timestamp time.Time
}

// Validate checks the OHLCV invariants: low <= open,close <= high and a
// non-negative volume.
func (b Bar) Validate() error {
	if b.Symbol == "" {
		return ErrBarInvalid
	}
	if b.Volume < 0 {
		return ErrBarInvalid
	}
	if b.Low.GreaterThan(b.Open) || b.Low.GreaterThan(b.Close) {
		return ErrBarInvalid
	}
	if b.High.LessThan(b.Open) || b.High.LessThan(b.Close) {
		return ErrBarInvalid
	}
	return nil
}

// CloseF returns the close price as a float64 for statistical use.
// Monetary arithmetic should stay on the decimal fields.
func (b Bar) CloseF() float64 {
	f, _ := b.Close.Float64()
	return f
}
