package models

import "time"

// Requests for chart HTTP endpoints. Defined in domain for consistency and reuse.
// From/To accept RFC3339 or unix seconds; empty means the source's full range.

type PieRequest struct {
	Source string `query:"source" json:"source" default:"default" validate:"required,max=64"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	View   string `query:"view" json:"view" default:"activity" validate:"oneof=total activity average"`
}

type SummaryRequest struct {
	Source string `query:"source" json:"source" default:"default" validate:"required,max=64"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}

// HistoryQuery selects the history a store should load. Zero From/To means
// the store's full range.
type HistoryQuery struct {
	Source string
	From   time.Time
	To     time.Time
}
