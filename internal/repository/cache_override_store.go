package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domrepo "LimesMS/internal/domain/repository"
	pkgcache "LimesMS/pkg/cache"
)

// CacheOverrideStore keeps human overrides in a pkg/cache Service: the memory
// cache for a single process, Redis when replicas must agree.
type CacheOverrideStore struct {
	cache pkgcache.Service
	ttl   time.Duration
}

// NewCacheOverrideStore uses ttl as the entry lifetime; 0 keeps the backend default.
func NewCacheOverrideStore(c pkgcache.Service, ttl time.Duration) *CacheOverrideStore {
	return &CacheOverrideStore{cache: c, ttl: ttl}
}

func overrideKey(clientID string) string {
	return pkgcache.GenerateKey("override", clientID)
}

func (s *CacheOverrideStore) Get(ctx context.Context, clientID string) (float64, error) {
	var v float64
	err := s.cache.Get(ctx, overrideKey(clientID), &v)
	if errors.Is(err, pkgcache.ErrCacheMiss) {
		return 0, domrepo.ErrOverrideNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get override: %w", err)
	}
	return v, nil
}

func (s *CacheOverrideStore) Set(ctx context.Context, clientID string, value float64) error {
	if err := s.cache.Set(ctx, overrideKey(clientID), value, s.ttl); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

func (s *CacheOverrideStore) Delete(ctx context.Context, clientID string) error {
	key := overrideKey(clientID)
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	if !ok {
		return domrepo.ErrOverrideNotFound
	}
	return s.cache.Delete(ctx, key)
}

var _ domrepo.OverrideStore = (*CacheOverrideStore)(nil)
