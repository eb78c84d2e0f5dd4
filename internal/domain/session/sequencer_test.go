package session

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
)

// --- Mock implementations ---

type mockPizzaCustomizer struct {
	result    *PizzaResult
	err       error
	callCount int
}

func (m *mockPizzaCustomizer) Customize(_ context.Context, _ catalog.Item, _ string) (*PizzaResult, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockFlavorPicker struct {
	flavor string
	err    error
}

func (m *mockFlavorPicker) Pick(_ context.Context, _ []string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.flavor, nil
}

type mockCart struct {
	entries []*CartEntry
	err     error
}

func (m *mockCart) Append(_ context.Context, entry *CartEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

// --- Helpers ---

func sessionCatalog() []catalog.Item {
	return []catalog.Item{
		{
			ID: "pz1", Name: "Pepperoni", Category: catalog.CategoryPizza, Subcategory: "Classics",
			Sizes: []catalog.Size{
				{ID: "pz1-l", Name: "Large", Price: d("13.99")},
			},
		},
		{
			ID: "wg1", Name: "Crispy Wings", Category: catalog.CategoryChickenWings,
			BasePrice: d("9.99"),
		},
		{
			ID: "dr1", Name: "Cola", Category: catalog.CategoryDrinks,
			BasePrice: d("1.99"),
			Sizes: []catalog.Size{
				{ID: "dr1-c", Name: "591ml", Price: d("1.99")},
				{ID: "dr1-2l", Name: "2 Litre", Price: d("4.99")},
			},
		},
		{
			ID: "ds1", Name: "Garlic Dip", Category: catalog.CategoryDippingSauce,
			BasePrice: d("0.99"),
		},
	}
}

func largePizza(total string) *PizzaResult {
	return &PizzaResult{
		Customization: PizzaCustomization{
			Size: catalog.Size{ID: "pz1-l", Name: "Large", Price: d("13.99")},
		},
		TotalPrice: d(total),
	}
}

func newTestSequencer(t *combo.Template, pizza PizzaCustomizer, flavors FlavorPicker, cart CartAppender) *Sequencer {
	return NewSequencer(t, combo.DefaultRules(), sessionCatalog(), combo.NewSizeMatcher(), pizza, flavors, cart)
}

// --- Tests ---

func TestSequencer_ScenarioPizzaAndDrink(t *testing.T) {
	cart := &mockCart{}
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, cart)

	// Large pizza with no extras: the combo absorbs the size price.
	outcome, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.True(t, decimal.Zero.Equal(seq.State().Selections[0].ExtraCharge))

	require.True(t, seq.GoNext())

	// Chargeable 2-litre drink at $4.99.
	outcome, err = seq.SelectItem(context.Background(), "dr1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)

	assert.True(t, d("29.98").Equal(seq.State().FinalPrice()))
	assert.True(t, seq.State().IsComplete())

	entry, err := seq.Finish(context.Background())
	require.NoError(t, err)
	require.Len(t, entry.Selections, 2)
	assert.True(t, d("29.98").Equal(entry.FinalPrice))
	assert.True(t, d("4.99").Equal(entry.TotalExtraCharge))
	assert.True(t, entry.ComboBasePrice.Add(entry.TotalExtraCharge).Equal(entry.FinalPrice))
	require.Len(t, cart.entries, 1)
}

func TestSequencer_ScenarioWingsPieceCount(t *testing.T) {
	tpl := &combo.Template{
		ID:        "cmb2",
		Name:      "Wings Party",
		BasePrice: d("19.99"),
		Steps: []combo.StepSpec{
			{ID: "st1", ItemType: combo.ItemWings, Quantity: 1, SizeRestriction: "24 Pieces", Required: true, SortOrder: 1},
			{ID: "st2", ItemType: combo.ItemDippingSauce, Quantity: 1, Required: false, SortOrder: 2},
		},
	}
	seq := newTestSequencer(tpl, &mockPizzaCustomizer{}, &mockFlavorPicker{flavor: "BBQ"}, &mockCart{})

	// 24 pieces at 12 per unit: one selection is not enough.
	outcome, err := seq.SelectItem(context.Background(), "wg1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.False(t, seq.State().StepSatisfied(tpl.Steps[0]))
	assert.False(t, seq.GoNext())

	// The second unit satisfies the step and unblocks navigation.
	outcome, err = seq.SelectItem(context.Background(), "wg1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.True(t, seq.State().StepSatisfied(tpl.Steps[0]))
	assert.True(t, seq.GoNext())

	// Wings are never up-charged within a combo.
	assert.True(t, decimal.Zero.Equal(seq.State().TotalExtraCharge()))
	assert.Equal(t, "BBQ", seq.State().Selections[0].Flavor)
}

func TestSequencer_ScenarioOptionalSauceStep(t *testing.T) {
	tpl := twoStepTemplate()
	tpl.Steps = append(tpl.Steps, combo.StepSpec{
		ID: "st3", ItemType: combo.ItemDippingSauce, Quantity: 1, Required: false, SortOrder: 3,
	})
	cart := &mockCart{}
	seq := newTestSequencer(tpl, &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, cart)

	_, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	require.True(t, seq.GoNext())
	_, err = seq.SelectItem(context.Background(), "dr1", "")
	require.NoError(t, err)
	require.True(t, seq.GoNext())

	// The optional sauce step blocks nothing and contributes nothing.
	entry, err := seq.Finish(context.Background())
	require.NoError(t, err)
	assert.True(t, d("4.99").Equal(entry.TotalExtraCharge))
	assert.Len(t, entry.Selections, 2)
}

func TestSequencer_PizzaExtrasBecomeExtraCharge(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("16.49")}, &mockFlavorPicker{}, &mockCart{})

	_, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)

	// $16.49 total minus the absorbed $13.99 size price.
	assert.True(t, d("2.50").Equal(seq.State().Selections[0].ExtraCharge))
}

func TestSequencer_PizzaTotalBelowSizePriceClampsToZero(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("12.00")}, &mockFlavorPicker{}, &mockCart{})

	_, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(seq.State().Selections[0].ExtraCharge))
}

func TestSequencer_SubFlowCancellationIsNoOp(t *testing.T) {
	pizza := &mockPizzaCustomizer{err: ErrCancelled}
	seq := newTestSequencer(twoStepTemplate(), pizza, &mockFlavorPicker{}, &mockCart{})

	before := len(seq.State().Selections)
	outcome, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Len(t, seq.State().Selections, before)
	assert.Equal(t, 1, pizza.callCount)
}

func TestSequencer_FlavorPickerCancellationIsNoOp(t *testing.T) {
	tpl := &combo.Template{
		ID: "cmb3", Name: "Wings", BasePrice: d("9.99"),
		Steps: []combo.StepSpec{
			{ID: "st1", ItemType: combo.ItemWings, Quantity: 1, Required: true, SortOrder: 1},
		},
	}
	seq := newTestSequencer(tpl, &mockPizzaCustomizer{}, &mockFlavorPicker{err: ErrCancelled}, &mockCart{})

	outcome, err := seq.SelectItem(context.Background(), "wg1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Empty(t, seq.State().Selections)
}

func TestSequencer_UnknownFlavorRejected(t *testing.T) {
	tpl := &combo.Template{
		ID: "cmb3", Name: "Wings", BasePrice: d("9.99"),
		Steps: []combo.StepSpec{
			{ID: "st1", ItemType: combo.ItemWings, Quantity: 1, Required: true, SortOrder: 1},
		},
	}
	seq := newTestSequencer(tpl, &mockPizzaCustomizer{}, &mockFlavorPicker{flavor: "Ghost Pepper"}, &mockCart{})

	_, err := seq.SelectItem(context.Background(), "wg1", "")
	var ufErr *UnknownFlavorError
	require.ErrorAs(t, err, &ufErr)
	assert.Equal(t, "Ghost Pepper", ufErr.Flavor)
	assert.Empty(t, seq.State().Selections)
}

func TestSequencer_CapacityGuard(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, &mockCart{})

	outcome, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, outcome)

	// The step already has its required count; further attempts are ignored.
	outcome, err = seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStepFull, outcome)
	assert.Len(t, seq.State().Selections, 1)
}

func TestSequencer_IneligibleItemRejected(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{}, &mockFlavorPicker{}, &mockCart{})

	// A drink cannot be selected on the pizza step.
	_, err := seq.SelectItem(context.Background(), "dr1", "")
	var ineErr *ItemNotEligibleError
	require.ErrorAs(t, err, &ineErr)
	assert.Equal(t, "dr1", ineErr.ItemID)
}

func TestSequencer_Navigation(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, &mockCart{})

	// Required step with no selections blocks GoNext and Skip.
	assert.False(t, seq.GoNext())
	assert.False(t, seq.Skip())

	// JumpTo is ungated.
	assert.True(t, seq.JumpTo(1))
	assert.Equal(t, 1, seq.State().CurrentStep)
	assert.True(t, seq.GoPrev())
	assert.Equal(t, 0, seq.State().CurrentStep)
	assert.False(t, seq.GoPrev())
	assert.False(t, seq.JumpTo(2))
	assert.False(t, seq.JumpTo(-1))
}

func TestSequencer_FinishRequiresLastStepAndCompleteness(t *testing.T) {
	cart := &mockCart{}
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, cart)

	// Not on the last step.
	_, err := seq.Finish(context.Background())
	require.ErrorIs(t, err, ErrNotReady)

	_, err = seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	require.True(t, seq.GoNext())

	// On the last step but the drink step is unmet.
	assert.False(t, seq.CanFinish())
	_, err = seq.Finish(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	assert.Empty(t, cart.entries)

	_, err = seq.SelectItem(context.Background(), "dr1", "")
	require.NoError(t, err)
	require.True(t, seq.CanFinish())

	_, err = seq.Finish(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.entries, 1)

	// Finish closes the session; a second finish cannot double-append.
	_, err = seq.Finish(context.Background())
	require.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, cart.entries, 1)
}

func TestSequencer_CancelDiscardsWithoutEmitting(t *testing.T) {
	cart := &mockCart{}
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, cart)

	_, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)

	seq.Cancel()
	assert.True(t, seq.Closed())
	assert.Empty(t, cart.entries)

	_, err = seq.SelectItem(context.Background(), "pz1", "")
	require.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, seq.GoNext())
	assert.False(t, seq.RemoveSelection(0, "st1"))
}

func TestSequencer_CartAppendFailureKeepsSessionOpen(t *testing.T) {
	cart := &mockCart{err: context.DeadlineExceeded}
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{result: largePizza("13.99")}, &mockFlavorPicker{}, cart)

	_, err := seq.SelectItem(context.Background(), "pz1", "")
	require.NoError(t, err)
	require.True(t, seq.GoNext())
	_, err = seq.SelectItem(context.Background(), "dr1", "")
	require.NoError(t, err)

	_, err = seq.Finish(context.Background())
	require.Error(t, err)
	assert.False(t, seq.Closed())
}

func TestSequencer_CandidatesSubcategoryFilter(t *testing.T) {
	seq := newTestSequencer(twoStepTemplate(), &mockPizzaCustomizer{}, &mockFlavorPicker{}, &mockCart{})

	assert.Len(t, seq.Candidates(""), 1)
	assert.Len(t, seq.Candidates("Classics"), 1)
	assert.Empty(t, seq.Candidates("Gourmet"))
}
