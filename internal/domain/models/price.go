package models

import "time"

// PricePoint is one close sample of a series, ordered ascending by Time.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// Series is a loaded price series together with the metadata carried by its JSON file.
type Series struct {
	Symbol    string
	Kind      string // "daily" | "intraday"
	Reference string // ref_th from the pipeline, if any
	Points    []PricePoint
}

// Closes returns the close values of points in order.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
