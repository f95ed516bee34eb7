package series

import (
	"math"
	"testing"
	"time"

	"LimesMS/internal/domain/models"
)

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func pts(step time.Duration, closes ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Time: t0.Add(time.Duration(i) * step), Close: c}
	}
	return out
}

func TestFiniteDropsNaNAndInf(t *testing.T) {
	in := pts(time.Minute, 1, math.NaN(), 2, math.Inf(1), math.Inf(-1), 3)
	got := Finite(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	for i, want := range []float64{1, 2, 3} {
		if got[i].Close != want {
			t.Errorf("point %d: expected %v, got %v", i, want, got[i].Close)
		}
	}
	if len(in) != 6 {
		t.Fatalf("input modified")
	}
}

func TestSortByTimeKeepsDuplicates(t *testing.T) {
	in := []models.PricePoint{
		{Time: t0.Add(2 * time.Hour), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.Add(time.Hour), Close: 2},
		{Time: t0.Add(time.Hour), Close: 2.5},
	}
	SortByTime(in)
	want := []float64{1, 2, 2.5, 3}
	for i := range want {
		if in[i].Close != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], in[i].Close)
		}
	}
}

func TestSamplingInterval(t *testing.T) {
	cases := []struct {
		name     string
		points   []models.PricePoint
		fallback time.Duration
		want     time.Duration
	}{
		{"regular 15m", pts(15*time.Minute, 1, 2, 3, 4, 5), time.Hour, 15 * time.Minute},
		{"single point", pts(15*time.Minute, 1), 30 * time.Minute, 30 * time.Minute},
		{"all same time", pts(0, 1, 2, 3), 5 * time.Minute, 5 * time.Minute},
		{
			"overnight gap ignored by median",
			[]models.PricePoint{
				{Time: t0, Close: 1},
				{Time: t0.Add(5 * time.Minute), Close: 1},
				{Time: t0.Add(10 * time.Minute), Close: 1},
				{Time: t0.Add(16 * time.Hour), Close: 1},
				{Time: t0.Add(16*time.Hour + 5*time.Minute), Close: 1},
			},
			time.Minute,
			5 * time.Minute,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SamplingInterval(tc.points, tc.fallback); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLinearTrend(t *testing.T) {
	closes := []float64{1, 2, 3, 10, 12, 14, 16}
	got := LinearTrend(closes, 4)
	if got == nil {
		t.Fatalf("expected slope")
	}
	if math.Abs(*got-2) > 1e-9 {
		t.Fatalf("expected slope 2, got %v", *got)
	}
	if LinearTrend([]float64{5}, 20) != nil {
		t.Fatalf("expected nil for single close")
	}
	flat := LinearTrend([]float64{5, 5, 5, 5}, 0)
	if flat == nil || *flat != 0 {
		t.Fatalf("expected zero slope for flat series, got %v", flat)
	}
}
