package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/internal/services/series"
	"LimesMS/pkg/util"
)

// seriesDoc covers the three layouts the fetch pipeline has written over time:
//
//	{"symbol","yahoo","ref_th","rows":[{"time","close"}]}
//	{"meta":{...},"points":[{"ts":<ms>,"close"}]}
//	{"data":[...],"source","updated_at"}
type seriesDoc struct {
	Symbol string          `json:"symbol"`
	Yahoo  string          `json:"yahoo"`
	RefTh  json.RawMessage `json:"ref_th"`
	Meta   seriesMeta      `json:"meta"`
	Rows   []rawPoint      `json:"rows"`
	Points []rawPoint      `json:"points"`
	Data   []rawPoint      `json:"data"`
}

type seriesMeta struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	DayRefTh  string `json:"day0_ref_th"`
	UsedTick  string `json:"used_ticker"`
	Generated string `json:"generated_th"`
}

type rawPoint struct {
	Time  flexTime   `json:"time"`
	TS    flexTime   `json:"ts"`
	Date  flexTime   `json:"date"`
	Close *flexFloat `json:"close"`
}

func (p rawPoint) close() float64 {
	if p.Close == nil {
		return math.NaN()
	}
	return float64(*p.Close)
}

func (p rawPoint) at() time.Time {
	switch {
	case !p.Time.IsZero():
		return p.Time.Time
	case !p.TS.IsZero():
		return p.TS.Time
	default:
		return p.Date.Time
	}
}

// flexTime accepts ISO strings and unix seconds or milliseconds. Anything
// unparsable decodes to the zero time and the row is dropped later.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if parsed, ok := util.ParseTime(s); ok {
			t.Time = parsed
		}
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		return nil
	}
	t.Time = util.UnixAuto(int64(f))
	return nil
}

// flexFloat accepts numbers and numeric strings; null or junk becomes NaN.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat(math.NaN())
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexFloat(v)
	}
	return nil
}

// DecodeSeries parses a series document. Rows without a usable time or with a
// non-finite close are dropped; the rest are sorted ascending (stable).
// A bare JSON array of points is accepted as well.
func DecodeSeries(b []byte, symbol string, kind domrepo.SeriesKind) (*models.Series, error) {
	var doc seriesDoc
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Rows); err != nil {
			return nil, fmt.Errorf("decode %s %s series: %w", symbol, kind, err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode %s %s series: %w", symbol, kind, err)
	}

	raw := doc.Rows
	if len(raw) == 0 {
		raw = doc.Points
	}
	if len(raw) == 0 {
		raw = doc.Data
	}

	points := make([]models.PricePoint, 0, len(raw))
	for _, r := range raw {
		at := r.at()
		if at.IsZero() {
			continue
		}
		points = append(points, models.PricePoint{Time: at, Close: r.close()})
	}
	points = series.Finite(points)
	series.SortByTime(points)

	out := &models.Series{
		Symbol:    firstNonEmpty(doc.Symbol, doc.Meta.Label, symbol),
		Kind:      string(kind),
		Reference: firstNonEmpty(refString(doc.RefTh), doc.Meta.DayRefTh),
		Points:    points,
	}
	return out, nil
}

func refString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" && v != "null" {
			return v
		}
	}
	return ""
}
