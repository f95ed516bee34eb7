package repository

// SeriesKind distinguishes the low-frequency and high-frequency series of a symbol.
type SeriesKind string

const (
	KindDaily    SeriesKind = "daily"
	KindIntraday SeriesKind = "intraday"
)
