package handler

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

// ErrSizeViolation is returned when a submitted pizza customization picks a
// size outside the step's size restriction.
var ErrSizeViolation = errors.New("pizza size violates the step's size restriction")

// pendingDelegates bridges the HTTP surface to the core's modal sub-flow
// ports. The client runs the sub-flow UI and submits its result with the
// select request; the payload is armed on the delegate before the sequencer
// runs and consumed exactly once. A select request without the payload
// behaves as a cancelled sub-flow.
type pendingDelegates struct {
	matcher *combo.SizeMatcher

	pizza     *session.PizzaResult
	flavor    string
	hasFlavor bool
}

// arm stages the sub-flow payloads submitted with one select request.
func (p *pendingDelegates) arm(pizza *session.PizzaResult, flavor *string) {
	p.pizza = pizza
	if flavor != nil {
		p.flavor = *flavor
		p.hasFlavor = true
	} else {
		p.flavor = ""
		p.hasFlavor = false
	}
}

// Customize implements session.PizzaCustomizer. The step's size restriction
// is enforced as a hard constraint on the submitted size.
func (p *pendingDelegates) Customize(_ context.Context, _ catalog.Item, sizeRestriction string) (*session.PizzaResult, error) {
	result := p.pizza
	p.pizza = nil
	if result == nil {
		return nil, session.ErrCancelled
	}
	if sizeRestriction != "" && !p.matcher.Matches(sizeRestriction, result.Customization.Size.Name) {
		return nil, ErrSizeViolation
	}
	return result, nil
}

// Pick implements session.FlavorPicker. Flavor membership in the fixed list
// is validated by the sequencer.
func (p *pendingDelegates) Pick(_ context.Context, _ []string) (string, error) {
	if !p.hasFlavor {
		return "", session.ErrCancelled
	}
	p.hasFlavor = false
	return p.flavor, nil
}

// --- Request payloads ---

type selectRequest struct {
	ItemID      string        `json:"itemId"`
	Subcategory string        `json:"subcategory,omitempty"`
	Flavor      *string       `json:"flavor,omitempty"`
	Pizza       *pizzaPayload `json:"pizza,omitempty"`
}

type pizzaPayload struct {
	SizeID     string          `json:"sizeId"`
	SizeName   string          `json:"sizeName"`
	SizePrice  decimal.Decimal `json:"sizePrice"`
	Toppings   []string        `json:"toppings,omitempty"`
	Crust      string          `json:"crust,omitempty"`
	Sauce      string          `json:"sauce,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (p *pizzaPayload) toResult() *session.PizzaResult {
	return &session.PizzaResult{
		Customization: session.PizzaCustomization{
			Size: catalog.Size{
				ID:    p.SizeID,
				Name:  p.SizeName,
				Price: p.SizePrice,
			},
			Toppings: p.Toppings,
			Crust:    p.Crust,
			Sauce:    p.Sauce,
		},
		TotalPrice: p.TotalPrice,
	}
}

type jumpRequest struct {
	Step int `json:"step"`
}
