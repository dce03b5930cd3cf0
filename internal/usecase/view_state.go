package usecase

import "EnergyView/internal/services/partition"

// ViewState is the presentation-side state machine of a pie chart: it holds
// the current view and tells the caller when a switch needs a recomputation.
type ViewState struct {
	current partition.View
}

func NewViewState(start partition.View) *ViewState {
	return &ViewState{current: start}
}

func (s *ViewState) Current() partition.View { return s.current }

// Switch moves to v and reports whether the view actually changed.
func (s *ViewState) Switch(v partition.View) bool {
	if v == s.current {
		return false
	}
	s.current = v
	return true
}
