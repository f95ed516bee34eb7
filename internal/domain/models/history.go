package models

import "time"

// SignalRecord is the compact form of a computed signal kept in history.
type SignalRecord struct {
	Symbol      string    `json:"symbol"`
	Profile     string    `json:"profile"`
	ComputedAt  time.Time `json:"computed_at"`
	Last        float64   `json:"last"`
	ZScore      float64   `json:"z_score"`
	SlopePerDay *float64  `json:"slope_per_day"`
	Forecast    *float64  `json:"forecast_next_period"`
	RiskScore   float64   `json:"risk_score"`
	Escalated   bool      `json:"escalated"`
	Advice      Advice    `json:"advice"`
}

// RecordOf flattens s into a history record.
func RecordOf(s *Signal) SignalRecord {
	return SignalRecord{
		Symbol:      s.Symbol,
		Profile:     s.Profile,
		ComputedAt:  s.ComputedAt,
		Last:        s.Last,
		ZScore:      s.ZScore,
		SlopePerDay: s.SlopePerDay,
		Forecast:    s.Forecast,
		RiskScore:   s.RiskScore,
		Escalated:   s.Escalated,
		Advice:      s.Advice,
	}
}
