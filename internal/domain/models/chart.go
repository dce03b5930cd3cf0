package models

import "time"

// ChartData is the labels/values/colors triple handed to a chart widget.
type ChartData struct {
	View     string    `json:"view"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Colors   []string  `json:"colors"`
	Tooltips []string  `json:"tooltips"`
}

// PieSummary names the partitions that dominate a history window.
type PieSummary struct {
	MostUsed    string `json:"mostUsed"`
	MostIntense string `json:"mostIntense"`
	WindowHours int    `json:"windowHours"`
}

// ViewInfo describes one selectable chart view.
type ViewInfo struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// InsightEvent is published whenever a summary is computed for a source.
type InsightEvent struct {
	Source      string    `json:"source"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	MostUsed    string    `json:"most_used"`
	MostIntense string    `json:"most_intense"`
	ComputedAt  time.Time `json:"computed_at"`
}
