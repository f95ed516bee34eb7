package signal

import (
	"math"
	"testing"
	"time"

	"LimesMS/internal/domain/models"
)

var d0 = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func daily(closes ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Time: d0.AddDate(0, 0, i), Close: c}
	}
	return out
}

func ramp(from float64, n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeRisingSeriesSells(t *testing.T) {
	res := Compute("SPY", daily(ramp(100, 41, 1)...), intraday(15*time.Minute, flat(50, 12)...), DefaultConfig())
	if res.Status != models.OutcomeOK || res.Signal == nil {
		t.Fatalf("expected ok outcome, got %+v", res)
	}
	s := res.Signal

	if s.Last != 140 || s.Profile != ProfileStandard || s.Symbol != "SPY" {
		t.Fatalf("unexpected header: %+v", s)
	}
	if !(s.Band.Upper >= s.Band.Mean && s.Band.Mean >= s.Band.Lower) {
		t.Fatalf("band out of order: %+v", s.Band)
	}
	if math.Abs(s.Band.Mean-120.5) > 1e-9 {
		t.Errorf("expected mean 120.5 over the last 40 closes, got %v", s.Band.Mean)
	}
	if math.Abs(s.MA-139) > 1e-9 {
		t.Errorf("expected MA3 139, got %v", s.MA)
	}
	if s.ZScore <= 0 {
		t.Errorf("expected positive z, got %v", s.ZScore)
	}
	if s.SlopePerDay == nil || math.Abs(*s.SlopePerDay-10.0/130/10) > 1e-12 {
		t.Errorf("unexpected slope %v", s.SlopePerDay)
	}
	if s.Forecast == nil || *s.Forecast <= 140 {
		t.Errorf("expected forecast above 140, got %v", s.Forecast)
	}
	if s.TrendPerDay == nil || math.Abs(*s.TrendPerDay-1) > 1e-9 {
		t.Errorf("expected least-squares trend 1, got %v", s.TrendPerDay)
	}
	if s.Escalated || AnyHigh(s.MonitorRows) {
		t.Errorf("flat intraday must not escalate")
	}
	if s.Advice != models.AdviceSell {
		t.Errorf("expected SELL, got %s (risk %.3f)", s.Advice, s.RiskScore)
	}
	if s.Chart != nil {
		t.Errorf("chart must be omitted unless requested")
	}
}

func TestComputeConstantSeriesBuys(t *testing.T) {
	for _, c := range []float64{180, 0.1, 1.7, 100.1, 2345.67} {
		res := Compute("GLD", daily(flat(c, 41)...), nil, DefaultConfig())
		s := res.Signal
		if s == nil {
			t.Fatalf("c=%v: expected signal, got %+v", c, res)
		}
		if s.ZScore != 0 || *s.SlopePerDay != 0 || s.Band.StdDev != 0 || s.Band.Mean != c {
			t.Fatalf("c=%v: expected zero z, slope and stddev, got %+v", c, s)
		}
		if s.RiskScore != 0.5 || s.Advice != models.AdviceBuy {
			t.Fatalf("c=%v: expected risk 0.5 BUY, got %v %s", c, s.RiskScore, s.Advice)
		}
		for _, r := range s.MonitorRows {
			if r.Flag != models.FlagUnknown {
				t.Fatalf("c=%v: expected unknown rows without intraday data, got %s", c, r.Flag)
			}
		}
	}
}

func TestComputeInsufficientData(t *testing.T) {
	res := Compute("X", daily(ramp(1, 10, 1)...), nil, DefaultConfig())
	if res.Status != models.OutcomeInsufficientData || res.Signal != nil {
		t.Fatalf("expected insufficient data, got %+v", res)
	}
	if got := res.Insufficient; got == nil || got.Have != 10 || got.Need != 20 || got.Series != "daily" {
		t.Fatalf("unexpected insufficient detail %+v", got)
	}

	closes := ramp(1, 21, 1)
	closes[3] = math.NaN()
	closes[7] = math.Inf(-1)
	res = Compute("X", daily(closes...), nil, DefaultConfig())
	if res.Status != models.OutcomeInsufficientData || res.Insufficient.Have != 19 {
		t.Fatalf("expected non-finite closes dropped before the length check, got %+v", res.Insufficient)
	}
}

func TestComputeIntradaySpikeEscalates(t *testing.T) {
	in := append(flat(100, 10), 103)
	res := Compute("QQQ", daily(flat(50, 25)...), intraday(15*time.Minute, in...), DefaultConfig())
	s := res.Signal
	if !s.Escalated || s.RiskScore < 4.2 || s.BaseRisk != 0.5 {
		t.Fatalf("expected escalation, got base %v risk %v escalated %v", s.BaseRisk, s.RiskScore, s.Escalated)
	}
	if s.Advice != models.AdviceSell {
		t.Fatalf("expected SELL after escalation, got %s", s.Advice)
	}
}

func TestComputeHumanOverrideAndChart(t *testing.T) {
	cfg := DefaultConfig().WithHuman(f(5))
	cfg.Chart = true
	pts := daily(flat(10, 22)...)
	res := Compute("IWM", pts, nil, cfg)
	s := res.Signal
	if s.HumanOverride == nil || *s.HumanOverride != 5 {
		t.Fatalf("expected override echoed, got %v", s.HumanOverride)
	}
	if math.Abs(s.RiskScore-1.85) > 1e-9 || s.Advice != models.AdviceHold {
		t.Fatalf("expected blended 1.85 HOLD, got %v %s", s.RiskScore, s.Advice)
	}
	if len(s.Chart) != len(pts) || !s.Chart[0].Time.Equal(pts[0].Time) || s.Chart[21].MA != 10 {
		t.Fatalf("unexpected chart %+v", s.Chart)
	}
}

func TestEngineUsesProfile(t *testing.T) {
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	cons, _ := reg.Get(ProfileConservative)
	res := New(cons).Compute("SPY", daily(ramp(100, 41, 1)...), nil)
	if res.Signal.Profile != ProfileConservative {
		t.Fatalf("expected conservative profile name, got %s", res.Signal.Profile)
	}
	// base 3.75 sits inside the conservative WATCH band
	if res.Signal.Advice != models.AdviceWatch {
		t.Fatalf("expected WATCH under conservative thresholds, got %s", res.Signal.Advice)
	}
}
