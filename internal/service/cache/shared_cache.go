package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "LimesMS/pkg/cache"
)

// SharedCache adapts a pkg/cache Service (Redis or layered) to BytesCache so
// replicas share fetched series.
type SharedCache struct {
	svc    pkgcache.Service
	prefix string
}

func NewSharedCache(svc pkgcache.Service, prefix string) *SharedCache {
	return &SharedCache{svc: svc, prefix: prefix}
}

func (s *SharedCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := s.svc.Get(ctx, pkgcache.GenerateKey(s.prefix, key), &b)
	if errors.Is(err, pkgcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *SharedCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.svc.Set(ctx, pkgcache.GenerateKey(s.prefix, key), value, ttl)
}
