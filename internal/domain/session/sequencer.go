package session

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
)

// Sentinel errors for sequencer operations.
var (
	ErrSessionClosed = errors.New("session already finished or cancelled")
	ErrNotReady      = errors.New("combo is not complete")
)

// ItemNotEligibleError indicates a selection attempt with an item that is not
// in the current step's eligible set.
type ItemNotEligibleError struct {
	ItemID string
}

func (e *ItemNotEligibleError) Error() string {
	return fmt.Sprintf("item %s is not eligible for the current step", e.ItemID)
}

// UnknownFlavorError indicates a flavor outside the fixed flavor list.
type UnknownFlavorError struct {
	Flavor string
}

func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("unknown wing flavor %q", e.Flavor)
}

// SelectOutcome describes how a selection attempt ended. Business-rule
// rejections are outcomes, not errors: the only caller is an interactive
// session, and every rejection is representable as UI state.
type SelectOutcome string

const (
	// OutcomeAdded means a selection was appended.
	OutcomeAdded SelectOutcome = "added"
	// OutcomeStepFull means the step already has its required count; the
	// attempt was ignored.
	OutcomeStepFull SelectOutcome = "step_full"
	// OutcomeCancelled means a sub-flow was cancelled; nothing changed.
	OutcomeCancelled SelectOutcome = "cancelled"
)

// Sequencer drives one configurator session through its steps. It owns the
// session state exclusively for the session's lifetime, delegates item-type
// specific detail to the sub-flow ports, and emits exactly one cart entry on
// finish. All operations are synchronous; callers serialize access.
type Sequencer struct {
	state   *State
	catalog []catalog.Item
	matcher *combo.SizeMatcher
	pizza   PizzaCustomizer
	flavors FlavorPicker
	cart    CartAppender

	wingFlavors []string
	closed      bool
}

// NewSequencer starts a session over the given template. The catalog slice is
// a read-only snapshot taken at session start; it stays fixed for the
// session's lifetime.
func NewSequencer(
	t *combo.Template,
	rules combo.Rules,
	items []catalog.Item,
	matcher *combo.SizeMatcher,
	pizza PizzaCustomizer,
	flavors FlavorPicker,
	cart CartAppender,
) *Sequencer {
	return &Sequencer{
		state:       NewState(t, rules),
		catalog:     items,
		matcher:     matcher,
		pizza:       pizza,
		flavors:     flavors,
		cart:        cart,
		wingFlavors: DefaultWingFlavors,
	}
}

// State exposes the session state for rendering. Callers must not mutate it.
func (q *Sequencer) State() *State {
	return q.state
}

// Closed reports whether the session has ended (finished or cancelled).
func (q *Sequencer) Closed() bool {
	return q.closed
}

// Candidates returns the eligible items for the current step, applying the
// optional pizza subcategory filter. The set is recomputed on every call.
func (q *Sequencer) Candidates(subcategoryFilter string) []catalog.Item {
	return combo.EligibleItems(q.state.Step(), q.catalog, q.matcher, subcategoryFilter)
}

// SelectItem attempts to select the given catalog item for the current step.
//
// Pizza steps open the customization sub-flow; wings steps open the flavor
// picker; simple steps append immediately with size-resolved pricing. A full
// step or a cancelled sub-flow is a no-op outcome, not an error.
func (q *Sequencer) SelectItem(ctx context.Context, itemID, subcategoryFilter string) (SelectOutcome, error) {
	if q.closed {
		return "", ErrSessionClosed
	}

	step := q.state.Step()
	if q.state.SelectionCount(step.ID) >= q.state.Rules.RequiredCount(step) {
		return OutcomeStepFull, nil
	}

	item, ok := q.findCandidate(itemID, subcategoryFilter)
	if !ok {
		return "", &ItemNotEligibleError{ItemID: itemID}
	}

	switch step.ItemType {
	case combo.ItemPizza:
		return q.selectPizza(ctx, step, item)
	case combo.ItemWings:
		return q.selectWings(ctx, step, item)
	default:
		return q.selectSimple(step, item), nil
	}
}

func (q *Sequencer) findCandidate(itemID, subcategoryFilter string) (catalog.Item, bool) {
	for _, item := range q.Candidates(subcategoryFilter) {
		if item.ID == itemID {
			return item, true
		}
	}
	return catalog.Item{}, false
}

// selectPizza runs the pizza customization sub-flow. The combo absorbs the
// chosen size's base price; anything the sub-flow charges above that becomes
// the selection's extra charge.
func (q *Sequencer) selectPizza(ctx context.Context, step combo.StepSpec, item catalog.Item) (SelectOutcome, error) {
	result, err := q.pizza.Customize(ctx, item, step.SizeRestriction)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return OutcomeCancelled, nil
		}
		return "", errors.Wrap(err, "pizza customization")
	}

	extra := result.TotalPrice.Sub(result.Customization.Size.Price)
	if extra.IsNegative() {
		extra = decimal.Zero
	}

	customization := result.Customization
	q.state.appendSelection(Selection{
		StepID:      step.ID,
		ItemType:    step.ItemType,
		ItemID:      item.ID,
		ItemName:    item.Name,
		Pizza:       &customization,
		ExtraCharge: extra.Round(2),
	})
	return OutcomeAdded, nil
}

// selectWings runs the flavor picker. Wings are never up-charged within a
// combo.
func (q *Sequencer) selectWings(ctx context.Context, step combo.StepSpec, item catalog.Item) (SelectOutcome, error) {
	flavor, err := q.flavors.Pick(ctx, q.wingFlavors)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return OutcomeCancelled, nil
		}
		return "", errors.Wrap(err, "flavor picker")
	}
	if !validFlavor(q.wingFlavors, flavor) {
		return "", &UnknownFlavorError{Flavor: flavor}
	}

	q.state.appendSelection(Selection{
		StepID:      step.ID,
		ItemType:    step.ItemType,
		ItemID:      item.ID,
		ItemName:    item.Name,
		Flavor:      flavor,
		ExtraCharge: decimal.Zero,
	})
	return OutcomeAdded, nil
}

// selectSimple appends drinks, dipping sauces, and other plain selections.
// Chargeable steps bill the matched size's price, falling back to the item's
// base price when no size matches the restriction.
func (q *Sequencer) selectSimple(step combo.StepSpec, item catalog.Item) SelectOutcome {
	extra := decimal.Zero
	if step.Chargeable {
		if size := q.matcher.ResolveSize(item, step.SizeRestriction); size != nil {
			extra = size.Price
		} else {
			extra = item.BasePrice
		}
	}

	q.state.appendSelection(Selection{
		StepID:      step.ID,
		ItemType:    step.ItemType,
		ItemID:      item.ID,
		ItemName:    item.Name,
		ExtraCharge: extra.Round(2),
	})
	return OutcomeAdded
}

func validFlavor(flavors []string, flavor string) bool {
	for _, f := range flavors {
		if f == flavor {
			return true
		}
	}
	return false
}

// RemoveSelection removes the selection at the given global index if it
// belongs to the given step. It reports whether anything was removed.
func (q *Sequencer) RemoveSelection(index int, stepID string) bool {
	if q.closed {
		return false
	}
	return q.state.RemoveSelection(index, stepID)
}

// CanGoNext reports whether advancing from the current step is allowed: the
// step is either optional or has its required count.
func (q *Sequencer) CanGoNext() bool {
	if q.closed || q.state.CurrentStep >= len(q.state.Template.Steps)-1 {
		return false
	}
	return q.state.StepSatisfied(q.state.Step())
}

// GoNext advances to the next step when allowed. It reports whether the
// position changed.
func (q *Sequencer) GoNext() bool {
	if !q.CanGoNext() {
		return false
	}
	q.state.CurrentStep++
	return true
}

// Skip advances past the current step without the count condition. Allowed
// only on optional steps.
func (q *Sequencer) Skip() bool {
	if q.closed || q.state.CurrentStep >= len(q.state.Template.Steps)-1 {
		return false
	}
	if q.state.Step().Required {
		return false
	}
	q.state.CurrentStep++
	return true
}

// GoPrev moves back one step. Always permitted above step zero.
func (q *Sequencer) GoPrev() bool {
	if q.closed || q.state.CurrentStep == 0 {
		return false
	}
	q.state.CurrentStep--
	return true
}

// JumpTo moves directly to any step index. Direct navigation via the step
// indicator is ungated, unlike GoNext.
func (q *Sequencer) JumpTo(index int) bool {
	if q.closed || index < 0 || index >= len(q.state.Template.Steps) {
		return false
	}
	q.state.CurrentStep = index
	return true
}

// CanFinish reports whether the session can be finished: positioned on the
// last step with every required step of the template satisfied.
func (q *Sequencer) CanFinish() bool {
	if q.closed || q.state.CurrentStep != len(q.state.Template.Steps)-1 {
		return false
	}
	return q.state.IsComplete()
}

// Finish folds the session into a cart entry and appends it through the cart
// port. The append happens exactly once: a successful finish closes the
// session and rejects further operations. An incomplete session returns
// ErrNotReady without touching the cart.
func (q *Sequencer) Finish(ctx context.Context) (*CartEntry, error) {
	if q.closed {
		return nil, ErrSessionClosed
	}
	if !q.CanFinish() {
		return nil, ErrNotReady
	}

	entry := q.buildCartEntry()
	if err := q.cart.Append(ctx, entry); err != nil {
		return nil, errors.Wrap(err, "append to cart")
	}

	q.closed = true
	return entry, nil
}

// Cancel discards the session. Nothing is emitted and the external cart is
// untouched.
func (q *Sequencer) Cancel() {
	q.closed = true
}

func (q *Sequencer) buildCartEntry() *CartEntry {
	selections := make([]CartSelection, len(q.state.Selections))
	for i, sel := range q.state.Selections {
		selections[i] = CartSelection{
			ItemType:    string(sel.ItemType),
			ItemName:    sel.ItemName,
			Flavor:      sel.Flavor,
			Pizza:       sel.Pizza,
			ExtraCharge: sel.ExtraCharge,
		}
	}

	return &CartEntry{
		ID:               uuid.New().String(),
		ComboID:          q.state.Template.ID,
		ComboName:        q.state.Template.Name,
		ComboBasePrice:   q.state.Template.BasePrice,
		Selections:       selections,
		TotalExtraCharge: q.state.TotalExtraCharge(),
		FinalPrice:       q.state.FinalPrice(),
	}
}
