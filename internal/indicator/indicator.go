// Package indicator provides the rolling statistics used by the signal
// generators. All functions are pure and deterministic.
package indicator

import "math"

// SMA calculates Simple Moving Average.
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average seeded with the SMA of the
// first period values.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)
	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result = append(result, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result = append(result, ema)
	}

	return result
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation (n-1 denominator) of
// values, or 0 when fewer than 2 samples are supplied.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// ATR calculates the Average True Range over highs/lows/closes.
// Returns slice of length: len(closes) - period (the first true range
// needs a previous close).
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n <= period || len(highs) != n || len(lows) != n {
		return []float64{}
	}

	trueRanges := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trueRanges = append(trueRanges, math.Max(hl, math.Max(hc, lc)))
	}

	return SMA(trueRanges, period)
}

// RollingVWAP returns the cumulative volume-weighted average price over
// the window: result[i] covers prices[0..i]. Bars with zero cumulative
// volume fall back to the plain price.
func RollingVWAP(prices []float64, volumes []int64) []float64 {
	n := len(prices)
	if n == 0 || len(volumes) != n {
		return []float64{}
	}

	result := make([]float64, n)
	var pvSum, volSum float64
	for i := 0; i < n; i++ {
		pvSum += prices[i] * float64(volumes[i])
		volSum += float64(volumes[i])
		if volSum > 0 {
			result[i] = pvSum / volSum
		} else {
			result[i] = prices[i]
		}
	}
	return result
}

// OLSSlope returns the least-squares slope of y regressed on x, the
// hedge-ratio estimate for a spread y - slope*x. Returns 0 when x has no
// variance.
func OLSSlope(x, y []float64) float64 {
	n := len(x)
	if n == 0 || len(y) != n {
		return 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var cov, varX float64
	for i := 0; i < n; i++ {
		cov += (x[i] - meanX) * (y[i] - meanY)
		varX += (x[i] - meanX) * (x[i] - meanX)
	}
	if varX == 0 {
		return 0
	}
	return cov / varX
}

// AR1 estimates the lag-1 autoregressive coefficient of the series, used
// as a cheap stationarity check for spreads: a coefficient well below 1
// indicates mean reversion.
func AR1(series []float64) float64 {
	if len(series) < 3 {
		return 1
	}
	x := series[:len(series)-1]
	y := series[1:]
	return OLSSlope(x, y)
}
