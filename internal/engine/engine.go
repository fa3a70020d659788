package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/execution"
	"github.com/paperline/paperline/internal/indicator"
	"github.com/paperline/paperline/internal/strategy"
)

// volWindow is the number of trailing close-to-close returns used for
// the realized volatility handed to the risk sizer.
const volWindow = 20

// minDelta is the smallest position change worth trading. Deltas below
// it are treated as noise and skipped.
const minDelta = 1e-6

// BarSource supplies historical bars for a universe, ordered by
// timestamp then symbol.
type BarSource interface {
	FetchBars(ctx context.Context, universe []string, start, end time.Time) ([]core.Bar, error)
}

// Engine runs a signal generator over historical bars and simulates the
// resulting orders against a cash account.
type Engine struct {
	bars     BarSource
	slippage execution.SlippageModel
	fees     execution.FeeModel
	sizer    execution.RiskSizer
	capital  decimal.Decimal
	logger   *zap.Logger
}

// New builds an engine over the given bar source and execution models.
func New(bars BarSource, slip execution.SlippageModel, fees execution.FeeModel, sizer execution.RiskSizer, capital decimal.Decimal, logger ...*zap.Logger) *Engine {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Engine{
		bars:     bars,
		slippage: slip,
		fees:     fees,
		sizer:    sizer,
		capital:  capital,
		logger:   l,
	}
}

// account holds the mutable simulation state threaded through the run.
type account struct {
	cash      decimal.Decimal
	positions map[string]int64
	lastPrice map[string]decimal.Decimal
	peak      decimal.Decimal
	history   map[string][]core.Bar
}

func (a *account) positionsValue() decimal.Decimal {
	total := decimal.Zero
	for sym, qty := range a.positions {
		if qty == 0 {
			continue
		}
		price, ok := a.lastPrice[sym]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(qty)))
	}
	return total
}

// Run executes the generator over [start, end]. It always returns a
// non-nil Result once inputs validate; data and runtime failures are
// reported through the result's Failed state with whatever was
// recorded up to that point preserved.
func (e *Engine) Run(ctx context.Context, gen strategy.Generator, universe []string, start, end time.Time) (res *Result, err error) {
	if len(universe) == 0 {
		return nil, core.ErrEmptyUniverse
	}
	if end.Before(start) {
		return nil, core.WrapError(core.ErrInvalidDateRange,
			fmt.Errorf("start %s after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}

	res = &Result{
		RunID:          uuid.New().String(),
		Generator:      gen.Name(),
		Universe:       append([]string(nil), universe...),
		Start:          start,
		End:            end,
		State:          StateRunning,
		InitialCapital: e.capital,
		FinalEquity:    e.capital,
		StartedAt:      time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			res.State = StateFailed
			res.Error = fmt.Sprintf("panic: %v", r)
			res.FinishedAt = time.Now().UTC()
			err = core.WrapError(core.ErrRunFailed, fmt.Errorf("%v", r))
			e.logger.Error("backtest panicked",
				zap.String("run_id", res.RunID),
				zap.Any("panic", r))
		}
	}()

	e.logger.Info("backtest starting",
		zap.String("run_id", res.RunID),
		zap.String("generator", gen.Name()),
		zap.Int("universe", len(universe)))

	bars, ferr := e.bars.FetchBars(ctx, universe, start, end)
	if ferr != nil {
		res.State = StateFailed
		res.Error = ferr.Error()
		res.FinishedAt = time.Now().UTC()
		return res, core.WrapError(core.ErrRunFailed, ferr)
	}

	acct := &account{
		cash:      e.capital,
		positions: make(map[string]int64),
		lastPrice: make(map[string]decimal.Decimal),
		peak:      e.capital,
		history:   make(map[string][]core.Bar),
	}

	for _, group := range groupByTimestamp(bars) {
		if cerr := ctx.Err(); cerr != nil {
			res.State = StateFailed
			res.Error = cerr.Error()
			res.FinishedAt = time.Now().UTC()
			return res, core.WrapError(core.ErrRunFailed, cerr)
		}
		e.step(res, acct, gen, group)
	}

	res.FinalEquity = lastEquity(res, e.capital)
	finalize(res)
	res.State = StateCompleted
	res.FinishedAt = time.Now().UTC()

	e.logger.Info("backtest finished",
		zap.String("run_id", res.RunID),
		zap.Int("orders", len(res.Orders)),
		zap.Int("points", len(res.EquityCurve)))
	return res, nil
}

// step processes one timestamp: record bars, collect signals, size and
// execute fills, then take the equity snapshot.
func (e *Engine) step(res *Result, acct *account, gen strategy.Generator, group barGroup) {
	prices := make(map[string]decimal.Decimal, len(group.bars))
	volumes := make(map[string]int64, len(group.bars))
	for _, bar := range group.bars {
		acct.history[bar.Symbol] = append(acct.history[bar.Symbol], bar)
		prices[bar.Symbol] = bar.Close
		volumes[bar.Symbol] = bar.Volume
		acct.lastPrice[bar.Symbol] = bar.Close
	}

	equity := acct.cash.Add(acct.positionsValue())
	signals := gen.Generate(group.ts, acct.history, clonePositions(acct.positions))
	res.SignalCount += len(signals)

	for _, sig := range signals {
		if sig.Direction == 0 {
			continue
		}
		price, ok := prices[sig.Symbol]
		if !ok {
			continue
		}
		if !price.IsPositive() {
			e.logger.Debug("skipping signal on non-positive quote",
				zap.String("symbol", sig.Symbol),
				zap.String("price", price.String()))
			continue
		}
		strength := float64(sig.Direction) * sig.Strength
		vol := realizedVol(acct.history[sig.Symbol])
		target := e.sizer.Size(strength, price, equity, acct.positions[sig.Symbol], vol)

		delta := float64(target - acct.positions[sig.Symbol])
		if math.Abs(delta) < minDelta {
			continue
		}
		side := core.SideBuy
		if delta < 0 {
			side = core.SideSell
		}
		qty := int64(math.Abs(delta))
		if qty == 0 {
			continue
		}

		executed, serr := e.slippage.Apply(price, qty, side, volumes[sig.Symbol])
		if serr != nil {
			e.logger.Debug("slippage rejected fill",
				zap.String("symbol", sig.Symbol), zap.Error(serr))
			continue
		}
		commission := e.fees.Calculate(executed, qty, side)
		notional := executed.Mul(decimal.NewFromInt(qty))

		if side == core.SideBuy {
			required := notional.Add(commission)
			if required.GreaterThan(acct.cash) {
				e.logger.Debug("buy rejected on insufficient cash",
					zap.String("symbol", sig.Symbol),
					zap.Int64("quantity", qty),
					zap.String("required", required.String()),
					zap.String("cash", acct.cash.String()))
				continue
			}
			acct.cash = acct.cash.Sub(required)
			acct.positions[sig.Symbol] += qty
		} else {
			acct.cash = acct.cash.Add(notional.Sub(commission))
			acct.positions[sig.Symbol] -= qty
		}

		res.Orders = append(res.Orders, OrderRecord{
			Symbol:        sig.Symbol,
			Side:          side,
			Quantity:      qty,
			QuotedPrice:   price,
			ExecutedPrice: executed,
			Commission:    commission,
			Timestamp:     group.ts,
		})
	}

	posValue := acct.positionsValue()
	equity = acct.cash.Add(posValue)
	if equity.GreaterThan(acct.peak) {
		acct.peak = equity
	}

	point := EquityPoint{
		Timestamp:      group.ts,
		Equity:         equity,
		Cash:           acct.cash,
		PositionsValue: posValue,
		PeakEquity:     acct.peak,
	}
	if acct.peak.IsPositive() {
		point.Drawdown = acct.peak.Sub(equity).Div(acct.peak).InexactFloat64()
	}
	if n := len(res.EquityCurve); n > 0 {
		prev := res.EquityCurve[n-1].Equity
		if prev.IsPositive() {
			r := equity.Sub(prev).Div(prev).InexactFloat64()
			point.Return = &r
		}
	}
	res.EquityCurve = append(res.EquityCurve, point)
}

type barGroup struct {
	ts   time.Time
	bars []core.Bar
}

// groupByTimestamp buckets bars into chronological groups, symbols
// sorted within each group.
func groupByTimestamp(bars []core.Bar) []barGroup {
	byTs := make(map[time.Time][]core.Bar)
	for _, bar := range bars {
		byTs[bar.Timestamp] = append(byTs[bar.Timestamp], bar)
	}
	groups := make([]barGroup, 0, len(byTs))
	for ts, group := range byTs {
		sort.Slice(group, func(i, j int) bool { return group[i].Symbol < group[j].Symbol })
		groups = append(groups, barGroup{ts: ts, bars: group})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ts.Before(groups[j].ts) })
	return groups
}

func clonePositions(positions map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(positions))
	for sym, qty := range positions {
		out[sym] = qty
	}
	return out
}

// realizedVol annualizes the sample deviation of the trailing
// close-to-close returns. Zero until two returns exist.
func realizedVol(bars []core.Bar) float64 {
	if len(bars) < 3 {
		return 0
	}
	start := len(bars) - volWindow - 1
	if start < 0 {
		start = 0
	}
	window := bars[start:]
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev := window[i-1].CloseF()
		if prev <= 0 {
			continue
		}
		returns = append(returns, window[i].CloseF()/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}
	return indicator.StdDev(returns) * math.Sqrt(252)
}

func lastEquity(res *Result, initial decimal.Decimal) decimal.Decimal {
	if n := len(res.EquityCurve); n > 0 {
		return res.EquityCurve[n-1].Equity
	}
	return initial
}
