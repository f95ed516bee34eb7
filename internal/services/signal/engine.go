// Package signal implements the rolling statistical signal engine: band,
// short moving average, slope, z-score, intraday monitor, risk score and
// advice. Everything here is pure; callers own loading, caching and rendering.
package signal

import (
	"LimesMS/internal/domain/models"
	domsvc "LimesMS/internal/domain/service"
	"LimesMS/internal/services/series"
)

// Engine binds a Config to the SignalEngine interface.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg.Clone() }

func (e *Engine) Compute(symbol string, daily, intraday []models.PricePoint) models.Result {
	return Compute(symbol, daily, intraday, e.cfg)
}

// Compute runs the whole pipeline for one symbol. Non-finite closes are
// dropped first; a daily series shorter than cfg.MinPoints yields the
// insufficient-data variant instead of a signal.
func Compute(symbol string, daily, intraday []models.PricePoint, cfg Config) models.Result {
	daily = series.Finite(daily)
	intraday = series.Finite(intraday)

	need := cfg.MinPoints
	if need < 2 {
		need = 2
	}
	if len(daily) < need {
		return models.Insufficient("daily", len(daily), need)
	}

	closes := models.Closes(daily)
	n := len(closes)
	bands := Bands(closes, cfg.BandWindow, cfg.BandK)
	ma := MovingAverage(closes, cfg.MAWindow)

	last := closes[n-1]
	band := bands[n-1]
	slope := SlopePerDay(closes, cfg.SlopeLookback)
	z := ZScore(last, band)

	interval := series.SamplingInterval(intraday, cfg.IntradayInterval)
	rows := Monitor(intraday, cfg.Monitor, interval)

	risk := Score(RiskInput{
		SlopePerDay: slope,
		ZScore:      z,
		Rows:        rows,
		Human:       cfg.HumanOverride,
	}, cfg.Risk)

	sig := &models.Signal{
		Symbol:        symbol,
		Profile:       cfg.Name,
		Last:          last,
		LastTime:      daily[n-1].Time,
		Band:          band,
		MA:            ma[n-1],
		SlopePerDay:   slope,
		TrendPerDay:   series.LinearTrend(closes, cfg.TrendWindow),
		ZScore:        z,
		Forecast:      Forecast(last, slope),
		BaseRisk:      risk.Base,
		RiskScore:     risk.Score,
		Escalated:     risk.Escalated,
		HumanOverride: cfg.HumanOverride,
		Advice:        Classify(risk.Score, cfg.Advice),
		MonitorRows:   rows,
	}
	if cfg.Chart {
		sig.Chart = chart(daily, ma, bands)
	}
	return models.OK(sig)
}

func chart(points []models.PricePoint, ma []float64, bands []models.Band) []models.ChartPoint {
	out := make([]models.ChartPoint, len(points))
	for i, p := range points {
		out[i] = models.ChartPoint{
			Time:  p.Time,
			Close: p.Close,
			MA:    ma[i],
			Mean:  bands[i].Mean,
			Upper: bands[i].Upper,
			Lower: bands[i].Lower,
		}
	}
	return out
}

var _ domsvc.SignalEngine = (*Engine)(nil)
