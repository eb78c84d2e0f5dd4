package session

import (
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
)

// PizzaCustomization is the payload returned by the pizza customization
// sub-flow. The configurator treats everything beyond Size as opaque detail;
// Size carries the price the combo absorbs.
type PizzaCustomization struct {
	Size     catalog.Size `json:"size"`
	Toppings []string     `json:"toppings,omitempty"`
	Crust    string       `json:"crust,omitempty"`
	Sauce    string       `json:"sauce,omitempty"`
}

// Selection is one choice made against a combo step. Selections are immutable
// once appended; a change is remove plus re-add.
type Selection struct {
	StepID      string
	ItemType    combo.ItemType
	ItemID      string
	ItemName    string
	Flavor      string
	Pizza       *PizzaCustomization
	ExtraCharge decimal.Decimal
}

// State is the full mutable state of one configurator session. It is an
// explicit value object with no UI framework coupling: created fresh each
// time the configurator opens, mutated only through Sequencer operations,
// and discarded on cancel.
type State struct {
	Template    *combo.Template
	Rules       combo.Rules
	CurrentStep int
	Selections  []Selection
}

// NewState returns a fresh session state positioned on the first step with no
// selections.
func NewState(t *combo.Template, rules combo.Rules) *State {
	return &State{Template: t, Rules: rules}
}

// Reset returns the state to its initial condition, keeping the template and
// rules.
func (s *State) Reset() {
	s.CurrentStep = 0
	s.Selections = nil
}

// Step returns the definition of the current step.
func (s *State) Step() combo.StepSpec {
	return s.Template.Steps[s.CurrentStep]
}

// SelectionCount returns how many selections belong to the given step.
func (s *State) SelectionCount(stepID string) int {
	n := 0
	for _, sel := range s.Selections {
		if sel.StepID == stepID {
			n++
		}
	}
	return n
}

// appendSelection adds a selection. Capacity is guarded by the caller.
func (s *State) appendSelection(sel Selection) {
	s.Selections = append(s.Selections, sel)
}

// RemoveSelection removes the selection at the given global index, but only
// when it belongs to the step the caller is editing. Removal never touches
// selections of other steps. It reports whether a selection was removed.
func (s *State) RemoveSelection(index int, stepID string) bool {
	if index < 0 || index >= len(s.Selections) {
		return false
	}
	if s.Selections[index].StepID != stepID {
		return false
	}
	s.Selections = append(s.Selections[:index], s.Selections[index+1:]...)
	return true
}
