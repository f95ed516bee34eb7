package repository

import (
	"testing"
	"time"

	domrepo "LimesMS/internal/domain/repository"
)

func TestDecodeSeriesLayouts(t *testing.T) {
	cases := []struct {
		name   string
		doc    string
		symbol string
		ref    string
		times  []time.Time
		closes []float64
	}{
		{
			name:   "rows with ref_th",
			doc:    `{"symbol":"GOLD","yahoo":"GC=F","ref_th":"14 Feb 2025 04:00","rows":[{"time":"2025-02-13T00:00:00+00:00","close":2900.5},{"time":"2025-02-14T00:00:00+00:00","close":2910}]}`,
			symbol: "GOLD",
			ref:    "14 Feb 2025 04:00",
			times:  []time.Time{time.Date(2025, 2, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
			closes: []float64{2900.5, 2910},
		},
		{
			name:   "meta and millisecond points",
			doc:    `{"meta":{"label":"XAUUSD","day0_ref_th":"04:00 TH"},"points":[{"ts":1739491200000,"close":1.5}]}`,
			symbol: "XAUUSD",
			ref:    "04:00 TH",
			times:  []time.Time{time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
			closes: []float64{1.5},
		},
		{
			name:   "data with dates",
			doc:    `{"data":[{"date":"2025-02-14","close":"10.25"}],"source":"yahoo","updated_at":"2025-02-14"}`,
			symbol: "spy",
			times:  []time.Time{time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
			closes: []float64{10.25},
		},
		{
			name:   "bare array",
			doc:    `[{"time":"2025-02-14 15:30","close":3}]`,
			symbol: "spy",
			times:  []time.Time{time.Date(2025, 2, 14, 15, 30, 0, 0, time.UTC)},
			closes: []float64{3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := DecodeSeries([]byte(tc.doc), "spy", domrepo.KindDaily)
			if err != nil {
				t.Fatal(err)
			}
			if s.Symbol != tc.symbol || s.Reference != tc.ref || s.Kind != "daily" {
				t.Fatalf("unexpected header %q %q %q", s.Symbol, s.Reference, s.Kind)
			}
			if len(s.Points) != len(tc.closes) {
				t.Fatalf("expected %d points, got %d", len(tc.closes), len(s.Points))
			}
			for i := range tc.closes {
				if !s.Points[i].Time.Equal(tc.times[i]) || s.Points[i].Close != tc.closes[i] {
					t.Fatalf("point %d: got %+v", i, s.Points[i])
				}
			}
		})
	}
}

func TestDecodeSeriesDropsBadRowsAndSorts(t *testing.T) {
	doc := `{"rows":[
        {"time":"2025-02-14","close":3},
        {"time":"not a date","close":9},
        {"time":"2025-02-12","close":null},
        {"time":"2025-02-11"},
        {"time":"2025-02-13","close":"abc"},
        {"time":"2025-02-10","close":1},
        {"time":"2025-02-10","close":2}
    ]}`
	s, err := DecodeSeries([]byte(doc), "x", domrepo.KindDaily)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 2, 3}
	if len(s.Points) != len(want) {
		t.Fatalf("expected %d points, got %+v", len(want), s.Points)
	}
	for i, w := range want {
		if s.Points[i].Close != w {
			t.Fatalf("expected stable ascending order %v, got %+v", want, s.Points)
		}
	}
}

func TestDecodeSeriesEmptyAndInvalid(t *testing.T) {
	s, err := DecodeSeries([]byte(`{"symbol":"SPY","rows":[]}`), "SPY", domrepo.KindIntraday)
	if err != nil || len(s.Points) != 0 {
		t.Fatalf("empty rows should decode to an empty series, got %v %v", s, err)
	}
	if _, err := DecodeSeries([]byte(`{"rows":`), "SPY", domrepo.KindDaily); err == nil {
		t.Fatal("expected error on truncated JSON")
	}
}

func TestSeriesNaming(t *testing.T) {
	n := NewSeriesNaming("", map[string]string{"XAUUSD": "5m"})
	cases := []struct {
		symbol string
		kind   domrepo.SeriesKind
		want   string
	}{
		{"SPY", domrepo.KindDaily, "spy_daily.json"},
		{"SPY", domrepo.KindIntraday, "spy_15m.json"},
		{"BTC-USD", domrepo.KindIntraday, "btc-usd_15m.json"},
		{"xauusd", domrepo.KindIntraday, "xauusd_5m.json"},
		{"XAUUSD", domrepo.KindDaily, "xauusd_daily.json"},
		{"^^^", domrepo.KindDaily, ""},
	}
	for _, tc := range cases {
		if got := n.FileName(tc.symbol, tc.kind); got != tc.want {
			t.Errorf("FileName(%q, %s): expected %q, got %q", tc.symbol, tc.kind, tc.want, got)
		}
	}
}
