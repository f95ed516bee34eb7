package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"LimesMS/internal/domain/models"
)

func TestMemorySignalHistoryRing(t *testing.T) {
	h := NewMemorySignalHistory(3)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = h.Append(ctx, models.SignalRecord{Symbol: "SPY", ComputedAt: base.Add(time.Duration(i) * time.Minute), RiskScore: float64(i)})
	}
	_ = h.Append(ctx, models.SignalRecord{Symbol: "QQQ"})

	got, _ := h.Recent(ctx, "SPY", 10)
	if len(got) != 3 || got[0].RiskScore != 4 || got[2].RiskScore != 2 {
		t.Fatalf("expected newest three records, got %+v", got)
	}
	got, _ = h.Recent(ctx, "SPY", 1)
	if len(got) != 1 || got[0].RiskScore != 4 {
		t.Fatalf("expected limit 1, got %+v", got)
	}
	if got, _ := h.Recent(ctx, "IWM", 5); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

const tickersDocJSON = `{
  "aliases": {"GOLD": "GC=F", "xauusd": "XAUUSD=X"},
  "tickers": ["SPY", {"symbol": "GOLD", "name": "Gold futures"}, "spy", "QQQ", "XAUUSD", {"symbol": "SPYG", "name": "S&P growth"}, ""]
}`

func TestAssetCatalog(t *testing.T) {
	c, err := ParseAssetCatalog([]byte(tickersDocJSON))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 5 {
		t.Fatalf("expected 5 distinct assets, got %d", c.Len())
	}

	gold, ok := c.Resolve("gold")
	if !ok || gold.Provider != "GC=F" || gold.Name != "Gold futures" || gold.Slug != "gold" {
		t.Fatalf("unexpected gold %+v", gold)
	}
	if x, _ := c.Resolve("XAUUSD"); x.Provider != "XAUUSD=X" {
		t.Fatalf("alias keys are case-insensitive, got %+v", x)
	}
	if spy, _ := c.Resolve("SPY"); spy.Provider != "SPY" {
		t.Fatalf("unaliased symbol is its own provider, got %+v", spy)
	}
	if _, ok := c.Resolve("IWM"); ok {
		t.Fatal("unexpected resolve")
	}

	res := c.Search("sp", 10)
	if len(res) != 2 || res[0].Symbol != "SPY" || res[1].Symbol != "SPYG" {
		t.Fatalf("expected prefix matches in file order, got %+v", res)
	}
	res = c.Search("old", 10)
	if len(res) != 1 || res[0].Symbol != "GOLD" {
		t.Fatalf("expected substring match, got %+v", res)
	}
	res = c.Search("growth", 10)
	if len(res) != 1 || res[0].Symbol != "SPYG" {
		t.Fatalf("expected name match, got %+v", res)
	}
	if res = c.Search("", 2); len(res) != 2 || res[0].Symbol != "SPY" {
		t.Fatalf("expected catalog head, got %+v", res)
	}
}

func TestLoadAssetCatalogMissingFile(t *testing.T) {
	c, err := LoadAssetCatalog(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || c.Len() != 0 {
		t.Fatalf("expected empty catalog, got %v %v", c, err)
	}

	path := filepath.Join(t.TempDir(), "tickers.json")
	_ = os.WriteFile(path, []byte(tickersDocJSON), 0o644)
	c, err = LoadAssetCatalog(path)
	if err != nil || c.Len() != 5 {
		t.Fatalf("expected 5 assets from file, got %v %v", c, err)
	}
}
