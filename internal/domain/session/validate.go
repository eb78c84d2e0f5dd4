package session

import "github.com/slicehouse/combo-configurator/internal/domain/combo"

// StepSatisfied reports whether a step has enough selections. Optional steps
// are satisfied trivially; required steps need at least their resolved
// required count.
func (s *State) StepSatisfied(step combo.StepSpec) bool {
	if !step.Required {
		return true
	}
	return s.SelectionCount(step.ID) >= s.Rules.RequiredCount(step)
}

// IsComplete reports whether every required step of the template is
// satisfied. It is evaluated directly against the selection list on every
// call, so it reflects mutations synchronously with no stale caching.
func (s *State) IsComplete() bool {
	for _, step := range s.Template.Steps {
		if !s.StepSatisfied(step) {
			return false
		}
	}
	return true
}
