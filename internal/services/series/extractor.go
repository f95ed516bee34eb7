package series

import (
	"math"
	"sort"
	"time"

	"LimesMS/internal/domain/models"
)

// Finite drops points whose close is NaN or ±Inf. The input is not modified.
func Finite(points []models.PricePoint) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortByTime orders points ascending by time in place. Equal timestamps keep
// their input order; duplicates are not removed.
func SortByTime(points []models.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
}

// SamplingInterval estimates the spacing of a series as the median positive gap
// between consecutive timestamps. It returns fallback when fewer than two
// distinct timestamps exist.
func SamplingInterval(points []models.PricePoint, fallback time.Duration) time.Duration {
	if len(points) < 2 {
		return fallback
	}
	gaps := make([]time.Duration, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		d := points[i].Time.Sub(points[i-1].Time)
		if d > 0 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return fallback
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2]
}

// LinearTrend fits an ordinary least-squares line through the last window closes
// and returns its slope in price units per sample. It returns nil when fewer
// than two closes are available.
func LinearTrend(closes []float64, window int) *float64 {
	if window <= 0 || window > len(closes) {
		window = len(closes)
	}
	if window < 2 {
		return nil
	}
	ys := closes[len(closes)-window:]
	n := float64(window)
	// x = 0..window-1
	meanX := (n - 1) / 2
	meanY := 0.0
	for _, y := range ys {
		meanY += y
	}
	meanY /= n

	var sxy, sxx float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return nil
	}
	slope := sxy / sxx
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return nil
	}
	return &slope
}
