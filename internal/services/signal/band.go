package signal

import (
	"math"

	"LimesMS/internal/domain/models"
)

// Bands computes the rolling mean ± k·stddev band for every index of closes.
// Index i uses the trailing slice closes[max(0, i-window+1) .. i], so the first
// indices use a shorter window that grows to window. Mean and stddev are
// population statistics over that slice.
func Bands(closes []float64, window int, k float64) []models.Band {
	if window < 1 {
		window = 1
	}
	k = math.Abs(k)
	out := make([]models.Band, len(closes))
	for i := range closes {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		mean, sd := meanStd(closes[start : i+1])
		out[i] = models.Band{
			Mean:   mean,
			StdDev: sd,
			Upper:  mean + k*sd,
			Lower:  mean - k*sd,
		}
	}
	return out
}

// MovingAverage is the trailing simple moving average with the same growing
// window at the start of the series.
func MovingAverage(closes []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(closes))
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ZScore standardizes last against the band. A zero (or non-finite) stddev
// yields 0 rather than an error.
func ZScore(last float64, b models.Band) float64 {
	if b.StdDev == 0 {
		return 0
	}
	z := (last - b.Mean) / b.StdDev
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0
	}
	return z
}

// meanStd works on offsets from xs[0] so a constant slice yields its value
// as the mean and exactly zero deviation, whatever its binary representation.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	n := float64(len(xs))
	base := xs[0]
	sum, sq := 0.0, 0.0
	for _, x := range xs {
		d := x - base
		sum += d
		sq += d * d
	}
	shift := sum / n
	variance := sq/n - shift*shift
	if variance < 0 {
		variance = 0
	}
	return base + shift, math.Sqrt(variance)
}
