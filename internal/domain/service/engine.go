package service

import (
	"LimesMS/internal/domain/models"
)

// SignalEngine computes a signal from fully materialized daily and intraday series.
// Implementations are pure: no I/O, no state kept across calls.
type SignalEngine interface {
	Compute(symbol string, daily, intraday []models.PricePoint) models.Result
}
