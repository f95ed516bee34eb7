package signal

import (
	"math"
	"testing"

	"LimesMS/internal/domain/models"
)

func highRow() models.MonitorRow {
	pct := 2.5
	return models.MonitorRow{Window: "15m", Minutes: 15, Samples: 1, PctChange: &pct, Flag: models.FlagHigh}
}

func TestScoreBuckets(t *testing.T) {
	cfg := DefaultConfig().Risk

	cases := []struct {
		name  string
		slope *float64
		z     float64
		want  float64
	}{
		{"calm", f(0.0001), 0.1, 0.5},
		{"z alone without slope", nil, 1.2, 3.0},
		{"negative slope uses magnitude", f(-0.005), -0.7, (4.5 + 1.5) / 2},
		{"tier lower bound belongs to next tier", nil, 0.5, 1.5},
		{"infinite z", f(0), math.Inf(1), (0.5 + 4.5) / 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Score(RiskInput{SlopePerDay: tc.slope, ZScore: tc.z}, cfg)
			if math.Abs(r.Base-tc.want) > 1e-9 || r.Score != r.Base || r.Escalated {
				t.Fatalf("expected base %v, got %+v", tc.want, r)
			}
		})
	}
}

func TestScoreEscalation(t *testing.T) {
	cfg := DefaultConfig().Risk
	r := Score(RiskInput{SlopePerDay: f(0), ZScore: 0, Rows: []models.MonitorRow{highRow()}}, cfg)
	if !r.Escalated || r.Score < 4.2 || r.Base != 0.5 {
		t.Fatalf("expected escalation to 4.2 from base 0.5, got %+v", r)
	}

	// already above the floor: left alone
	r = Score(RiskInput{SlopePerDay: f(0.01), ZScore: 3, Rows: []models.MonitorRow{highRow()}}, cfg)
	if r.Escalated || r.Score != 4.5 {
		t.Fatalf("expected 4.5 without escalation, got %+v", r)
	}
}

func TestScoreHumanBlend(t *testing.T) {
	cfg := DefaultConfig().Risk
	in := RiskInput{SlopePerDay: f(0), ZScore: 0}

	in.Human = f(5)
	if r := Score(in, cfg); math.Abs(r.Score-1.85) > 1e-9 || r.Base != 0.5 {
		t.Fatalf("expected 0.7*0.5+0.3*5=1.85, got %+v", r)
	}

	// human cannot pull an escalated score below the floor
	in.Human = f(0)
	in.Rows = []models.MonitorRow{highRow()}
	if r := Score(in, cfg); r.Score < 4.2 || !r.Escalated {
		t.Fatalf("expected floor to hold after human blend, got %+v", r)
	}

	in.Rows = nil
	in.Human = f(-3)
	if r := Score(in, cfg); math.Abs(r.Score-0.35) > 1e-9 {
		t.Fatalf("expected negative override clamped to 0, got %+v", r)
	}

	in.Human = f(math.NaN())
	if r := Score(in, cfg); r.Score != 0.5 {
		t.Fatalf("expected NaN override ignored, got %+v", r)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	cfg := DefaultConfig().Risk
	cfg.EscalationFloor = 9
	for _, z := range []float64{-1000, -1, 0, 1000, math.NaN()} {
		for _, s := range []*float64{nil, f(-50), f(50), f(math.NaN())} {
			r := Score(RiskInput{SlopePerDay: s, ZScore: z, Rows: []models.MonitorRow{highRow()}, Human: f(99)}, cfg)
			if r.Score < 0 || r.Score > MaxRisk || r.Base < 0 || r.Base > MaxRisk {
				t.Fatalf("z=%v: score out of range: %+v", z, r)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	std := DefaultConfig().Advice
	cases := []struct {
		risk float64
		want models.Advice
	}{
		{0, models.AdviceBuy},
		{1.5, models.AdviceBuy},
		{1.5001, models.AdviceHold},
		{2.5, models.AdviceHold},
		{3.5, models.AdviceWatch},
		{3.5001, models.AdviceSell},
		{5, models.AdviceSell},
	}
	for _, tc := range cases {
		if got := Classify(tc.risk, std); got != tc.want {
			t.Errorf("Classify(%v): expected %s, got %s", tc.risk, tc.want, got)
		}
	}

	cons := AdviceThresholds{Buy: 1.6, Hold: 3.2, Watch: 4.0}
	if got := Classify(3.75, cons); got != models.AdviceWatch {
		t.Errorf("conservative 3.75: expected WATCH, got %s", got)
	}
}
