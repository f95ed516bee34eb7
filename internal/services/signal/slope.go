package signal

import "math"

// SlopePerDay is the relative two-point secant over the last lookback periods:
//
//	(close[n-1] - close[n-1-L]) / close[n-1-L] / L,  L = min(lookback, n-1)
//
// It returns nil when fewer than two closes exist or the reference close is
// not positive.
func SlopePerDay(closes []float64, lookback int) *float64 {
	n := len(closes)
	l := lookback
	if l > n-1 {
		l = n - 1
	}
	if l < 1 {
		return nil
	}
	ref := closes[n-1-l]
	if ref <= 0 || math.IsNaN(ref) || math.IsInf(ref, 0) {
		return nil
	}
	s := (closes[n-1] - ref) / ref / float64(l)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return nil
	}
	return &s
}

// Forecast extrapolates last one period ahead with the relative slope.
func Forecast(last float64, slope *float64) *float64 {
	if slope == nil {
		return nil
	}
	f := last * (1 + *slope)
	return &f
}
