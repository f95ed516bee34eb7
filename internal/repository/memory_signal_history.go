package repository

import (
	"context"
	"sync"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
)

// MemorySignalHistory keeps the last size records per symbol in a ring.
type MemorySignalHistory struct {
	mu   sync.RWMutex
	size int
	m    map[string]*ring
}

type ring struct {
	buf  []models.SignalRecord
	next int
	full bool
}

func NewMemorySignalHistory(size int) *MemorySignalHistory {
	if size < 1 {
		size = 1
	}
	return &MemorySignalHistory{size: size, m: make(map[string]*ring)}
}

func (h *MemorySignalHistory) Append(_ context.Context, rec models.SignalRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.m[rec.Symbol]
	if !ok {
		r = &ring{buf: make([]models.SignalRecord, h.size)}
		h.m[rec.Symbol] = r
	}
	r.buf[r.next] = rec
	r.next = (r.next + 1) % h.size
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent returns up to limit records for symbol, newest first.
func (h *MemorySignalHistory) Recent(_ context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.m[symbol]
	if !ok {
		return []models.SignalRecord{}, nil
	}
	n := r.next
	if r.full {
		n = h.size
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.SignalRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + h.size) % h.size
		out = append(out, r.buf[idx])
	}
	return out, nil
}

var _ domrepo.SignalHistory = (*MemorySignalHistory)(nil)
