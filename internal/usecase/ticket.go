package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one pipeline invocation made on behalf of a selection.
type Ticket struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Seq    uint64 `json:"seq"`
}

// Selection tracks the active symbol of one live session. Results are applied
// last-writer-wins: a result is accepted only while its symbol is still
// selected and its Seq is newer than the last applied one. Superseded work is
// not cancelled, its result is just dropped.
type Selection struct {
	mu      sync.Mutex
	symbol  string
	seq     uint64
	applied uint64
}

// Select switches the active symbol and returns the ticket for loading it.
func (s *Selection) Select(symbol string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbol = symbol
	return s.issueLocked()
}

// Begin returns a ticket for reloading the active symbol, or false when
// nothing is selected yet.
func (s *Selection) Begin() (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.symbol == "" {
		return Ticket{}, false
	}
	return s.issueLocked(), true
}

func (s *Selection) issueLocked() Ticket {
	s.seq++
	return Ticket{ID: uuid.NewString(), Symbol: s.symbol, Seq: s.seq}
}

// Commit reports whether the result for t may be applied, and records it.
func (s *Selection) Commit(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Symbol != s.symbol || t.Seq <= s.applied {
		return false
	}
	s.applied = t.Seq
	return true
}

// Symbol is the active selection, "" before the first Select.
func (s *Selection) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}
