package weekly

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/engine"
)

// Badge is the three-valued verdict of a run against its weekly
// targets.
type Badge string

const (
	BadgeGreen Badge = "green"
	BadgeAmber Badge = "amber"
	BadgeRed   Badge = "red"
)

// Thresholds configures the target checks. MaxDrawdown and
// DrawdownFloor are signed non-positive: a run passes when its
// observed (negative) value is greater than or equal to the threshold.
type Thresholds struct {
	TargetReturn  float64 // minimum acceptable mean weekly return
	MaxDrawdown   float64 // deepest tolerated cumulative drawdown, <= 0
	DrawdownFloor float64 // 5th-percentile weekly return floor, <= 0
}

// Evaluation is the full scorecard for one run's weekly series.
// Drawdown fields follow the non-positive convention: MaxDrawdown is
// the most negative excursion of the cumulative-return curve.
type Evaluation struct {
	MeanReturn   float64 `json:"mean_weekly_return"`
	MedianReturn float64 `json:"median_weekly_return"`
	P5Return     float64 `json:"p5_weekly_return"`
	P95Return    float64 `json:"p95_weekly_return"`
	P99Return    float64 `json:"p99_weekly_return"`
	WinRate      float64 `json:"win_rate"`
	PayoffRatio  float64 `json:"payoff_ratio"`

	MaxDrawdown              float64 `json:"max_drawdown"`
	MaxDrawdownDurationWeeks int     `json:"max_drawdown_duration_weeks"`
	AvgDrawdownDurationWeeks float64 `json:"avg_drawdown_duration_weeks"`

	TotalWeeks      int             `json:"total_weeks"`
	Turnover        decimal.Decimal `json:"turnover"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalSlippage   decimal.Decimal `json:"total_slippage"`

	TargetReturn       float64 `json:"target_weekly_return"`
	MeetsReturnTarget  bool    `json:"meets_return_target"`
	MeetsDrawdownLimit bool    `json:"meets_drawdown_limit"`
	MeetsFloorTarget   bool    `json:"meets_floor_target"`
	Badge              Badge   `json:"badge"`
}

// Evaluator scores weekly return series against fixed thresholds. It
// holds no mutable state and is safe to share across runs.
type Evaluator struct {
	thresholds Thresholds
}

func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate computes the scorecard over the given weeks. The input is
// read-only; an empty series yields the all-zero red result rather
// than an error.
func (e *Evaluator) Evaluate(weeks []engine.WeeklyReturn) Evaluation {
	if len(weeks) == 0 {
		return Evaluation{
			Turnover:        decimal.Zero,
			TotalCommission: decimal.Zero,
			TotalSlippage:   decimal.Zero,
			TargetReturn:    e.thresholds.TargetReturn,
			Badge:           BadgeRed,
		}
	}

	ordered := append([]engine.WeeklyReturn(nil), weeks...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Year != ordered[j].Year {
			return ordered[i].Year < ordered[j].Year
		}
		return ordered[i].Week < ordered[j].Week
	})

	returns := make([]float64, len(ordered))
	for i, week := range ordered {
		returns[i] = week.Return
	}

	result := Evaluation{
		MeanReturn:      mean(returns),
		TotalWeeks:      len(ordered),
		Turnover:        decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalSlippage:   decimal.Zero,
		TargetReturn:    e.thresholds.TargetReturn,
	}

	ranked := append([]float64(nil), returns...)
	sort.Float64s(ranked)
	result.MedianReturn = percentile(ranked, 0.50)
	result.P5Return = percentile(ranked, 0.05)
	result.P95Return = percentile(ranked, 0.95)
	result.P99Return = percentile(ranked, 0.99)

	var wins, losses []float64
	winCount := 0
	for _, r := range returns {
		if r > 0 {
			winCount++
			wins = append(wins, r)
		} else if r < 0 {
			losses = append(losses, r)
		}
	}
	result.WinRate = float64(winCount) / float64(len(returns))
	if len(losses) > 0 && len(wins) > 0 {
		result.PayoffRatio = math.Abs(mean(wins) / mean(losses))
	}

	result.MaxDrawdown, result.MaxDrawdownDurationWeeks, result.AvgDrawdownDurationWeeks = drawdown(returns)

	for _, week := range ordered {
		result.Turnover = result.Turnover.Add(week.Turnover)
		result.TotalCommission = result.TotalCommission.Add(week.Commission)
		result.TotalSlippage = result.TotalSlippage.Add(week.Slippage)
	}

	result.MeetsReturnTarget = result.MeanReturn >= e.thresholds.TargetReturn
	result.MeetsDrawdownLimit = result.MaxDrawdown >= e.thresholds.MaxDrawdown
	result.MeetsFloorTarget = result.P5Return >= e.thresholds.DrawdownFloor

	switch {
	case result.MeetsReturnTarget && result.MeetsDrawdownLimit && result.MeetsFloorTarget:
		result.Badge = BadgeGreen
	case result.MeetsReturnTarget:
		result.Badge = BadgeAmber
	default:
		result.Badge = BadgeRed
	}
	return result
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile interpolates linearly between the two nearest ranks of an
// ascending-sorted sample.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// drawdown compounds the weekly returns and measures the excursion
// below the running maximum. The returned maximum is non-positive;
// durations count contiguous weeks spent underwater.
func drawdown(returns []float64) (maxDD float64, maxDuration int, avgDuration float64) {
	cum := 1.0
	peak := 1.0
	var durations []int
	current := 0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := (cum - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
		if dd < 0 {
			current++
		} else if current > 0 {
			durations = append(durations, current)
			current = 0
		}
	}
	if current > 0 {
		durations = append(durations, current)
	}
	total := 0
	for _, d := range durations {
		if d > maxDuration {
			maxDuration = d
		}
		total += d
	}
	if len(durations) > 0 {
		avgDuration = float64(total) / float64(len(durations))
	}
	return maxDD, maxDuration, avgDuration
}
