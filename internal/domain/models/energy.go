package models

import "time"

// PartitionOption is one named daily time band of a partition scheme.
type PartitionOption struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Start float64 `json:"start"` // hour of day, [0,24)
}

// PartitionOptionList mirrors the {value: [...]} wrapper the history server emits.
type PartitionOptionList struct {
	Value []PartitionOption `json:"value"`
}

// PartitionSum is the aggregate energy (Wh) of one partition over one bucket.
// SumTotal is only approximately SumActive+SumPassive+SumSpike.
type PartitionSum struct {
	SumTotal   float64 `json:"sumTotal"`
	SumActive  float64 `json:"sumActive"`
	SumPassive float64 `json:"sumPassive"`
	SumSpike   float64 `json:"sumSpike"`
}

// EnergyHistory is the read-only input of the aggregation core.
// PartitionSums is laid out day-major: one record per partition per day.
type EnergyHistory struct {
	PartitionSums    []PartitionSum      `json:"partitionSums"`
	StartDateIndex   int                 `json:"startDateIndex"`
	EndDateIndex     int                 `json:"endDateIndex"`
	StartDate        time.Time           `json:"startDate"`
	EndDate          time.Time           `json:"endDate"`
	PartitionOptions PartitionOptionList `json:"partitionOptions"`
}

// Options is shorthand for h.PartitionOptions.Value.
func (h *EnergyHistory) Options() []PartitionOption {
	return h.PartitionOptions.Value
}

// PartitionSumRecord is a single partition-sum update as stored and ingested.
type PartitionSumRecord struct {
	Source    string    `json:"source"`
	Day       time.Time `json:"day"`
	Partition int       `json:"partition"`
	PartitionSum
}
