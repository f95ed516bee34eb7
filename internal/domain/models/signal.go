package models

import "time"

// Band is the rolling mean ± K·stddev envelope at one index.
type Band struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// MonitorFlag classifies a short-horizon move.
type MonitorFlag string

const (
	FlagOK      MonitorFlag = "OK"
	FlagWatch   MonitorFlag = "WATCH"
	FlagHigh    MonitorFlag = "HIGH"
	FlagUnknown MonitorFlag = "—"
)

// Advice is the final classification of the risk score.
type Advice string

const (
	AdviceBuy   Advice = "BUY"
	AdviceHold  Advice = "HOLD"
	AdviceWatch Advice = "WATCH"
	AdviceSell  Advice = "SELL"
)

// Valid reports whether a is one of the four advice states.
func (a Advice) Valid() bool {
	switch a {
	case AdviceBuy, AdviceHold, AdviceWatch, AdviceSell:
		return true
	default:
		return false
	}
}

// MonitorRow is one lookback window of the intraday monitor.
// PctChange is nil when the series is too short for the window.
type MonitorRow struct {
	Window    string      `json:"window"`
	Minutes   int         `json:"minutes"`
	Samples   int         `json:"samples"`
	PctChange *float64    `json:"pct_change"`
	Flag      MonitorFlag `json:"flag"`
}

// ChartPoint is the per-index data the presentation layer plots.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
	MA    float64   `json:"ma"`
	Mean  float64   `json:"mean"`
	Upper float64   `json:"upper"`
	Lower float64   `json:"lower"`
}

// Signal is the engine output for one symbol load.
type Signal struct {
	Symbol      string    `json:"symbol"`
	Profile     string    `json:"profile"`
	Reference   string    `json:"reference,omitempty"`
	ComputedAt  time.Time `json:"computed_at"`
	Last        float64   `json:"last"`
	LastTime    time.Time `json:"last_time"`
	Band        Band      `json:"band"`
	MA          float64   `json:"ma"`
	SlopePerDay *float64  `json:"slope_per_day"`
	TrendPerDay *float64  `json:"trend_per_day"`
	ZScore      float64   `json:"z_score"`
	Forecast    *float64  `json:"forecast_next_period"`

	BaseRisk      float64  `json:"base_risk"`
	RiskScore     float64  `json:"risk_score"`
	Escalated     bool     `json:"escalated"`
	HumanOverride *float64 `json:"human_override,omitempty"`
	Advice        Advice   `json:"advice"`

	MonitorRows []MonitorRow `json:"monitor_rows"`
	Chart       []ChartPoint `json:"chart,omitempty"`
}

// Outcome tags a Result.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInsufficientData Outcome = "insufficient_data"
)

// InsufficientData reports a series shorter than the engine minimum.
type InsufficientData struct {
	Series string `json:"series"`
	Have   int    `json:"have"`
	Need   int    `json:"need"`
}

// Result is either a Signal or an InsufficientData report, never both.
type Result struct {
	Status       Outcome           `json:"status"`
	Signal       *Signal           `json:"signal,omitempty"`
	Insufficient *InsufficientData `json:"insufficient,omitempty"`
}

// OK wraps a computed signal.
func OK(s *Signal) Result {
	return Result{Status: OutcomeOK, Signal: s}
}

// Insufficient builds the insufficient-data variant.
func Insufficient(series string, have, need int) Result {
	return Result{
		Status:       OutcomeInsufficientData,
		Insufficient: &InsufficientData{Series: series, Have: have, Need: need},
	}
}
