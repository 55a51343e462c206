package backtest

import "math"

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// SharpeRatio returns the annualized Sharpe of a daily return series over
// the given daily risk-free rate, using the sample standard deviation.
// A constant series has no risk premium to price and returns 0.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r - riskFree
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - riskFree - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(returns)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown returns the deepest peak-to-trough loss of an equity curve
// as a negative fraction of the running peak. It is 0 for a monotonically
// rising curve.
func MaxDrawdown(equity []float64) float64 {
	var peak, worst float64
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (e - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// TotalReturn returns the fractional gain of an equity curve end over start.
func TotalReturn(equity []float64) float64 {
	if len(equity) == 0 || equity[0] == 0 {
		return 0
	}
	return equity[len(equity)-1]/equity[0] - 1
}
