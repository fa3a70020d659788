package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/indicator"
)

// tradingDaysPerYear converts bar counts into calendar years for the
// annualized return and ratio scaling.
const tradingDaysPerYear = 252.0

// finalize computes the metrics snapshot and weekly rollups from the
// recorded curve and fills. A run with no equity points gets neither.
func finalize(res *Result) {
	if len(res.EquityCurve) == 0 {
		return
	}
	res.Metrics = computeMetrics(res)
	res.Weekly = computeWeekly(res)
}

func computeMetrics(res *Result) *MetricsSnapshot {
	snap := &MetricsSnapshot{
		AvgWin:          decimal.Zero,
		AvgLoss:         decimal.Zero,
		Turnover:        decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalSlippage:   decimal.Zero,
	}

	initial := res.InitialCapital
	final := res.EquityCurve[len(res.EquityCurve)-1].Equity
	if initial.IsPositive() {
		snap.TotalReturn = final.Sub(initial).Div(initial).InexactFloat64()
	}

	years := float64(len(res.EquityCurve)) / tradingDaysPerYear
	if years > 0 && snap.TotalReturn > -1 {
		snap.AnnualReturn = math.Pow(1+snap.TotalReturn, 1/years) - 1
	}

	returns := make([]float64, 0, len(res.EquityCurve))
	for _, point := range res.EquityCurve {
		if point.Return != nil {
			returns = append(returns, *point.Return)
		}
	}
	snap.SharpeRatio = annualizedRatio(returns, returns)
	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	snap.SortinoRatio = annualizedRatio(returns, downside)

	snap.MaxDrawdown, snap.MaxDrawdownDurationDays = drawdownStats(res.EquityCurve)

	trades := matchRoundTrips(res.Orders)
	snap.TotalTrades = len(trades)
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, trade := range trades {
		if trade.pnl.IsPositive() {
			snap.WinningTrades++
			grossProfit = grossProfit.Add(trade.pnl)
		} else if trade.pnl.IsNegative() {
			snap.LosingTrades++
			grossLoss = grossLoss.Add(trade.pnl)
		}
	}
	if snap.TotalTrades > 0 {
		snap.WinRate = float64(snap.WinningTrades) / float64(snap.TotalTrades)
	}
	if snap.WinningTrades > 0 {
		snap.AvgWin = grossProfit.Div(decimal.NewFromInt(int64(snap.WinningTrades)))
	}
	if snap.LosingTrades > 0 {
		snap.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(snap.LosingTrades)))
		pf := grossProfit.Div(grossLoss.Abs()).InexactFloat64()
		snap.ProfitFactor = &pf
	}

	for _, order := range res.Orders {
		qty := decimal.NewFromInt(order.Quantity)
		snap.Turnover = snap.Turnover.Add(order.ExecutedPrice.Mul(qty))
		snap.TotalCommission = snap.TotalCommission.Add(order.Commission)
		snap.TotalSlippage = snap.TotalSlippage.Add(
			order.ExecutedPrice.Sub(order.QuotedPrice).Abs().Mul(qty))
	}
	return snap
}

// annualizedRatio scales mean(sample)/stddev(spread) by sqrt(252). It
// is nil when the spread has fewer than two observations or zero
// deviation, matching the undefined-ratio convention.
func annualizedRatio(sample, spread []float64) *float64 {
	if len(sample) == 0 || len(spread) < 2 {
		return nil
	}
	sd := indicator.StdDev(spread)
	if sd == 0 {
		return nil
	}
	ratio := indicator.Mean(sample) / sd * math.Sqrt(tradingDaysPerYear)
	return &ratio
}

// drawdownStats returns the deepest drawdown in [0, 1] and the longest
// underwater stretch measured in equity points.
func drawdownStats(curve []EquityPoint) (float64, int) {
	maxDD := 0.0
	longest := 0
	current := 0
	for _, point := range curve {
		if point.Drawdown > maxDD {
			maxDD = point.Drawdown
		}
		if point.Drawdown > 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return maxDD, longest
}

type weekKey struct {
	year int
	week int
}

// computeWeekly buckets the equity curve and fills by ISO week. The
// weekly return spans the first to last snapshot inside the week.
func computeWeekly(res *Result) []WeeklyReturn {
	weeks := make(map[weekKey]*WeeklyReturn)
	for _, point := range res.EquityCurve {
		year, week := point.Timestamp.ISOWeek()
		key := weekKey{year: year, week: week}
		entry, ok := weeks[key]
		if !ok {
			entry = &WeeklyReturn{
				Year:       year,
				Week:       week,
				StartDate:  point.Timestamp,
				EndDate:    point.Timestamp,
				Turnover:   decimal.Zero,
				Commission: decimal.Zero,
				Slippage:   decimal.Zero,
			}
			weeks[key] = entry
		}
		if point.Timestamp.Before(entry.StartDate) {
			entry.StartDate = point.Timestamp
		}
		if point.Timestamp.After(entry.EndDate) {
			entry.EndDate = point.Timestamp
		}
	}

	// Weekly return spans the first to last equity snapshot inside the
	// week. A move landing on a week's opening bar shows up in that
	// point's equity and is not counted as a within-week gain.
	firstEquity := make(map[weekKey]decimal.Decimal)
	lastSeen := make(map[weekKey]decimal.Decimal)
	for _, point := range res.EquityCurve {
		year, week := point.Timestamp.ISOWeek()
		key := weekKey{year: year, week: week}
		if _, ok := firstEquity[key]; !ok {
			firstEquity[key] = point.Equity
		}
		lastSeen[key] = point.Equity
	}
	for key, entry := range weeks {
		open := firstEquity[key]
		if open.IsPositive() {
			entry.Return = lastSeen[key].Sub(open).Div(open).InexactFloat64()
		}
	}

	for _, order := range res.Orders {
		year, week := order.Timestamp.ISOWeek()
		entry, ok := weeks[weekKey{year: year, week: week}]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(order.Quantity)
		entry.TradeCount++
		entry.Turnover = entry.Turnover.Add(order.ExecutedPrice.Mul(qty))
		entry.Commission = entry.Commission.Add(order.Commission)
		entry.Slippage = entry.Slippage.Add(
			order.ExecutedPrice.Sub(order.QuotedPrice).Abs().Mul(qty))
	}

	out := make([]WeeklyReturn, 0, len(weeks))
	for _, entry := range weeks {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}
