package di

import (
	"context"
	"path/filepath"
	"testing"

	internalrepo "LimesMS/internal/repository"
	svccache "LimesMS/internal/service/cache"
	pkgcache "LimesMS/pkg/cache"
	"LimesMS/pkg/config"
)

func TestProvideProfilesHonoursDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Signal.DefaultProfile = "conservative"
	reg, err := ProvideProfiles(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := reg.Get(""); c.Name != "conservative" {
		t.Fatalf("expected conservative default, got %s", c.Name)
	}

	cfg.Signal.DefaultProfile = "missing"
	if _, err := ProvideProfiles(cfg); err == nil {
		t.Fatal("expected unknown default profile to fail")
	}
}

func TestProvideStoresByBackend(t *testing.T) {
	cfg := config.Default()
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()

	if _, ok := ProvideBytesCache(cfg, mem).(*svccache.TTLCache); !ok {
		t.Fatal("memory backend should use the TTL cache")
	}
	cfg.Cache.Backend = "redis"
	if _, ok := ProvideBytesCache(cfg, mem).(*svccache.SharedCache); !ok {
		t.Fatal("shared backends should use the shared cache")
	}

	series, err := ProvideSeriesStore(cfg, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := series.(*internalrepo.FileSeriesStore); !ok {
		t.Fatalf("expected file store, got %T", series)
	}
	cfg.Series.Source = "http"
	cfg.Series.BaseURL = "http://localhost/data"
	if s, _ := ProvideSeriesStore(cfg, nil, svccache.NewTTLCache(), nil); s == nil {
		t.Fatal("expected http store")
	}
	cfg.Series.Source = "clickhouse"
	if _, err := ProvideSeriesStore(cfg, nil, nil, nil); err == nil {
		t.Fatal("clickhouse source without a client must fail")
	}

	cfg.Overrides.Backend = "sqlite"
	cfg.Overrides.SQLitePath = filepath.Join(t.TempDir(), "o.db")
	store, cleanup, err := ProvideOverrideStore(cfg, mem)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if err := store.Set(context.Background(), "c", 2); err != nil {
		t.Fatal(err)
	}

	cfg.History.Backend = "none"
	if h := ProvideSignalHistory(cfg, nil); h != nil {
		t.Fatalf("expected no history, got %T", h)
	}
	cfg.History.Backend = "clickhouse"
	if _, ok := ProvideSignalHistory(cfg, nil).(*internalrepo.MemorySignalHistory); !ok {
		t.Fatal("clickhouse history without a client falls back to memory")
	}

	if _, ok := ProvideSignalPublisher(cfg, nil).(internalrepo.NopSignalPublisher); !ok {
		t.Fatal("disabled kafka should give the no-op publisher")
	}
	if ProvideRateLimiter(cfg) == nil {
		t.Fatal("rate limiting is on by default")
	}
}
