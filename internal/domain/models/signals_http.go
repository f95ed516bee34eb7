package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,max=32"`
	Profile  string `query:"profile" json:"profile" validate:"omitempty,max=32"`
	Human    string `query:"human" json:"human" validate:"omitempty,numeric"`
	ClientID string `query:"client" json:"client" validate:"omitempty,max=64"`
	Chart    bool   `query:"chart" json:"chart"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type AssetsRequest struct {
	Q     string `query:"q" json:"q" validate:"max=32"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type OverrideRequest struct {
	ClientID string `query:"client" json:"client" validate:"required,max=64"`
}

type OverrideUpdateRequest struct {
	ClientID string   `query:"client" json:"client" validate:"required,max=64"`
	Value    *float64 `json:"value" validate:"required,gte=0,lte=5"`
}
