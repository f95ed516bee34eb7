package models

// Asset is one autocomplete entry from tickers.json.
type Asset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"` // upstream ticker when aliased, e.g. GC=F
	Slug     string `json:"slug"`
}

// Override is the client-local human risk scalar in [0,5].
type Override struct {
	ClientID string  `json:"client_id"`
	Value    float64 `json:"value"`
}
