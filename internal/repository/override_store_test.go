package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	domrepo "LimesMS/internal/domain/repository"
	pkgcache "LimesMS/pkg/cache"
)

func exerciseOverrideStore(t *testing.T, s domrepo.OverrideStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "c1"); !errors.Is(err, domrepo.ErrOverrideNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Set(ctx, "c1", 3.5); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "c1", 4.25); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "c1")
	if err != nil || v != 4.25 {
		t.Fatalf("expected 4.25, got %v %v", v, err)
	}
	if _, err := s.Get(ctx, "c2"); !errors.Is(err, domrepo.ErrOverrideNotFound) {
		t.Fatalf("clients must be isolated, got %v", err)
	}
	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "c1"); !errors.Is(err, domrepo.ErrOverrideNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCacheOverrideStore(t *testing.T) {
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()
	exerciseOverrideStore(t, NewCacheOverrideStore(mem, 0))
}

func TestSQLiteOverrideStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "overrides.db")
	s, err := NewSQLiteOverrideStore(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseOverrideStore(t, s)

	if err := s.Set(context.Background(), "c3", 9); err == nil {
		t.Fatal("expected check constraint to reject 9")
	}
}
