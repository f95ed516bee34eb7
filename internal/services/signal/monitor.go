package signal

import (
	"fmt"
	"math"
	"time"

	"LimesMS/internal/domain/models"
)

// ClassifyMove flags an absolute percentage move. Bounds are exclusive: a move
// equal to ok is WATCH and a move equal to watch is HIGH.
func ClassifyMove(pct, ok, watch float64) models.MonitorFlag {
	a := math.Abs(pct)
	switch {
	case math.IsNaN(a):
		return models.FlagUnknown
	case a < ok:
		return models.FlagOK
	case a < watch:
		return models.FlagWatch
	default:
		return models.FlagHigh
	}
}

// Monitor computes one row per configured window over the intraday series.
// interval is the sampling interval used to turn minutes into sample counts.
func Monitor(points []models.PricePoint, cfg MonitorConfig, interval time.Duration) []models.MonitorRow {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	closes := models.Closes(points)
	n := len(closes)
	rows := make([]models.MonitorRow, 0, len(cfg.Windows))
	for _, minutes := range cfg.Windows {
		k := samplesFor(minutes, interval)
		row := models.MonitorRow{
			Window:  WindowLabel(minutes),
			Minutes: minutes,
			Samples: k,
			Flag:    models.FlagUnknown,
		}
		if n-1-k >= 0 {
			ref := reference(closes, k, cfg.Reference)
			if ref > 0 {
				pct := (closes[n-1] - ref) / ref * 100
				if !math.IsNaN(pct) && !math.IsInf(pct, 0) {
					row.PctChange = &pct
					row.Flag = ClassifyMove(pct, cfg.OK, cfg.Watch)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// AnyHigh reports whether a row is flagged HIGH.
func AnyHigh(rows []models.MonitorRow) bool {
	for _, r := range rows {
		if r.Flag == models.FlagHigh {
			return true
		}
	}
	return false
}

// WindowLabel renders minutes as 15m, 1h, 1h30m.
func WindowLabel(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}

func samplesFor(minutes int, interval time.Duration) int {
	k := int(math.Round(float64(time.Duration(minutes)*time.Minute) / float64(interval)))
	if k < 1 {
		k = 1
	}
	return k
}

// reference assumes len(closes) > k.
func reference(closes []float64, k int, mode string) float64 {
	n := len(closes)
	if mode != ReferenceMean {
		return closes[n-1-k]
	}
	sum := 0.0
	for _, c := range closes[n-1-k : n-1] {
		sum += c
	}
	return sum / float64(k)
}
