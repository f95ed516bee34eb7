package repository

import (
	"context"
	"errors"
	"time"

	"LimesMS/internal/domain/models"
)

var (
	// ErrSeriesNotFound is returned when no series exists for a symbol/kind.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrOverrideNotFound is returned when a client has no stored override.
	ErrOverrideNotFound = errors.New("override not found")
)

// SeriesStore loads the pre-computed price series for a symbol.
type SeriesStore interface {
	Load(ctx context.Context, symbol string, kind SeriesKind) (*models.Series, error)
}

// OverrideStore persists the client-local human risk override.
type OverrideStore interface {
	Get(ctx context.Context, clientID string) (float64, error)
	Set(ctx context.Context, clientID string, value float64) error
	Delete(ctx context.Context, clientID string) error
}

// SignalHistory keeps computed signals for later inspection.
type SignalHistory interface {
	Append(ctx context.Context, rec models.SignalRecord) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error)
}

// SignalPublisher fans computed signals out to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// AssetCatalog serves symbol metadata for autocomplete.
type AssetCatalog interface {
	Search(query string, limit int) []models.Asset
	Resolve(symbol string) (models.Asset, bool)
}

type Metrics interface {
	RecordSignal(symbol, profile string, advice models.Advice, risk float64)
	RecordInsufficient(symbol, series string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, d time.Duration)
	SetSessions(n int)
}
