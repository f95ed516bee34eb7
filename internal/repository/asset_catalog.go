package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/pkg/util"
)

type tickersDoc struct {
	Aliases map[string]string `json:"aliases"`
	Tickers []tickerEntry     `json:"tickers"`
}

// tickerEntry is either a bare string or {"symbol","name"}.
type tickerEntry struct {
	Symbol string
	Name   string
}

func (t *tickerEntry) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.Symbol = s
		return nil
	}
	var obj struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	t.Symbol, t.Name = obj.Symbol, obj.Name
	return nil
}

// StaticAssetCatalog serves the symbols listed in tickers.json, in file order
// with duplicates removed.
type StaticAssetCatalog struct {
	assets []models.Asset
	index  map[string]int // upper symbol and slug → position
}

// LoadAssetCatalog reads path. A missing file yields an empty catalog.
func LoadAssetCatalog(path string) (*StaticAssetCatalog, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewAssetCatalog(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	return ParseAssetCatalog(b)
}

func ParseAssetCatalog(b []byte) (*StaticAssetCatalog, error) {
	var doc tickersDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}
	return NewAssetCatalog(doc.Tickers, doc.Aliases), nil
}

func NewAssetCatalog(entries []tickerEntry, aliases map[string]string) *StaticAssetCatalog {
	upperAliases := make(map[string]string, len(aliases))
	for k, v := range aliases {
		upperAliases[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	c := &StaticAssetCatalog{index: make(map[string]int)}
	for _, e := range entries {
		sym := strings.TrimSpace(e.Symbol)
		if sym == "" {
			continue
		}
		key := strings.ToUpper(sym)
		if _, seen := c.index[key]; seen {
			continue
		}
		provider := sym
		if p, ok := upperAliases[key]; ok && p != "" {
			provider = p
		}
		a := models.Asset{
			Symbol:   sym,
			Name:     strings.TrimSpace(e.Name),
			Provider: provider,
			Slug:     util.Slugify(sym),
		}
		c.index[key] = len(c.assets)
		if _, taken := c.index[a.Slug]; !taken && a.Slug != "" {
			c.index[a.Slug] = len(c.assets)
		}
		c.assets = append(c.assets, a)
	}
	return c
}

// Search ranks symbol prefix matches before substring matches on symbol or
// name, keeping file order within each group. An empty query lists the
// catalog head.
func (c *StaticAssetCatalog) Search(query string, limit int) []models.Asset {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToUpper(strings.TrimSpace(query))
	var prefix, contains []models.Asset
	for _, a := range c.assets {
		sym := strings.ToUpper(a.Symbol)
		switch {
		case q == "" || strings.HasPrefix(sym, q):
			prefix = append(prefix, a)
		case strings.Contains(sym, q) || strings.Contains(strings.ToUpper(a.Name), q):
			contains = append(contains, a)
		}
		if len(prefix) >= limit {
			break
		}
	}
	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.Asset{}
	}
	return out
}

// Resolve looks a symbol up by display symbol (case-insensitive) or slug.
func (c *StaticAssetCatalog) Resolve(symbol string) (models.Asset, bool) {
	s := strings.TrimSpace(symbol)
	if i, ok := c.index[strings.ToUpper(s)]; ok {
		return c.assets[i], true
	}
	if i, ok := c.index[util.Slugify(s)]; ok {
		return c.assets[i], true
	}
	return models.Asset{}, false
}

// Len is the number of distinct assets.
func (c *StaticAssetCatalog) Len() int { return len(c.assets) }

var _ domrepo.AssetCatalog = (*StaticAssetCatalog)(nil)
