package repository

import (
	"strings"

	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/pkg/util"
)

// SeriesNaming maps a symbol and kind to the pipeline's file name:
// <slug>_daily.json and <slug>_<suffix>.json for intraday, where the suffix
// defaults to 15m and can be overridden per symbol (xauusd ships 5m).
type SeriesNaming struct {
	IntradaySuffix string
	Overrides      map[string]string // keyed by slug
}

func NewSeriesNaming(suffix string, overrides map[string]string) SeriesNaming {
	if suffix == "" {
		suffix = "15m"
	}
	norm := make(map[string]string, len(overrides))
	for k, v := range overrides {
		norm[util.Slugify(k)] = strings.TrimSpace(v)
	}
	return SeriesNaming{IntradaySuffix: suffix, Overrides: norm}
}

// FileName returns the file name, or "" when the symbol slugs to nothing.
func (n SeriesNaming) FileName(symbol string, kind domrepo.SeriesKind) string {
	slug := util.Slugify(symbol)
	if slug == "" {
		return ""
	}
	if kind == domrepo.KindDaily {
		return slug + "_daily.json"
	}
	suffix := n.IntradaySuffix
	if s, ok := n.Overrides[slug]; ok && s != "" {
		suffix = s
	}
	return slug + "_" + suffix + ".json"
}
