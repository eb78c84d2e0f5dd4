package combo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

func testCatalog() []catalog.Item {
	price := decimal.RequireFromString
	return []catalog.Item{
		{
			ID: "pz1", Name: "Pepperoni", Category: catalog.CategoryPizza, Subcategory: "Classics",
			Sizes: []catalog.Size{
				{ID: "pz1-m", Name: "Medium", Price: price("11.99")},
				{ID: "pz1-l", Name: "Large", Price: price("13.99")},
			},
		},
		{
			ID: "pz2", Name: "BBQ Chicken", Category: catalog.CategoryPizza, Subcategory: "Gourmet",
			Sizes: []catalog.Size{
				{ID: "pz2-l", Name: "Large", Price: price("15.99")},
			},
		},
		{
			ID: "pz3", Name: "Margherita", Category: catalog.CategoryPizza, Subcategory: "Classics",
			Sizes: []catalog.Size{
				{ID: "pz3-m", Name: "Medium", Price: price("10.99")},
			},
		},
		{
			ID: "wg1", Name: "Crispy Wings", Category: catalog.CategoryChickenWings,
			BasePrice: price("9.99"),
		},
		{
			ID: "wg2", Name: "Boneless Bites", Category: catalog.CategoryChickenWings,
			BasePrice: price("8.99"),
		},
		{
			ID: "dr1", Name: "Cola", Category: catalog.CategoryDrinks,
			BasePrice: price("1.99"),
			Sizes: []catalog.Size{
				{ID: "dr1-c", Name: "591ml", Price: price("1.99")},
				{ID: "dr1-2l", Name: "2 Litre", Price: price("4.99")},
			},
		},
		{
			ID: "ds1", Name: "Garlic Dip", Category: catalog.CategoryDippingSauce,
			BasePrice: price("0.99"),
		},
	}
}

func TestEligibleItems_CategoryMapping(t *testing.T) {
	items := testCatalog()
	m := NewSizeMatcher()

	tests := []struct {
		name    string
		step    StepSpec
		wantIDs []string
	}{
		{
			name:    "pizza step keeps only pizzas",
			step:    StepSpec{ItemType: ItemPizza, Quantity: 1},
			wantIDs: []string{"pz1", "pz2", "pz3"},
		},
		{
			name:    "wings step needs wings in the name",
			step:    StepSpec{ItemType: ItemWings, Quantity: 1},
			wantIDs: []string{"wg1"},
		},
		{
			name:    "drinks step keeps only drinks",
			step:    StepSpec{ItemType: ItemDrinks, Quantity: 1},
			wantIDs: []string{"dr1"},
		},
		{
			name:    "dipping sauce step keeps only sauces",
			step:    StepSpec{ItemType: ItemDippingSauce, Quantity: 1},
			wantIDs: []string{"ds1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleItems(tt.step, items, m, "")
			ids := make([]string, len(got))
			for i, item := range got {
				ids[i] = item.ID
			}
			assert.Equal(t, tt.wantIDs, ids)

			// No item may ever cross categories, whatever the filters.
			for _, item := range got {
				assert.Equal(t, CategoryFor(tt.step.ItemType), item.Category)
			}
		})
	}
}

func TestEligibleItems_SizeRestriction(t *testing.T) {
	items := testCatalog()
	m := NewSizeMatcher()

	step := StepSpec{ItemType: ItemPizza, Quantity: 1, SizeRestriction: `Large 14"`}
	got := EligibleItems(step, items, m, "")

	require.Len(t, got, 2)
	assert.Equal(t, "pz1", got[0].ID)
	assert.Equal(t, "pz2", got[1].ID)
}

func TestEligibleItems_SubcategoryFilter(t *testing.T) {
	items := testCatalog()
	m := NewSizeMatcher()

	step := StepSpec{ItemType: ItemPizza, Quantity: 1}
	got := EligibleItems(step, items, m, "classics")

	require.Len(t, got, 2)
	assert.Equal(t, "pz1", got[0].ID)
	assert.Equal(t, "pz3", got[1].ID)

	// Subcategory filters only apply to pizza steps.
	drinks := EligibleItems(StepSpec{ItemType: ItemDrinks, Quantity: 1}, items, m, "classics")
	assert.Len(t, drinks, 1)
}

func TestEligibleItems_WingsPieceRestrictionDoesNotFilterSizes(t *testing.T) {
	items := testCatalog()
	m := NewSizeMatcher()

	// "24 Pieces" governs the required count, not catalog sizes; wings items
	// without a matching size name stay eligible.
	step := StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "24 Pieces"}
	got := EligibleItems(step, items, m, "")

	require.Len(t, got, 1)
	assert.Equal(t, "wg1", got[0].ID)
}

func TestEligibleItems_EmptyResultForMisconfiguredRestriction(t *testing.T) {
	items := testCatalog()
	m := NewSizeMatcher()

	// A restriction no catalog size satisfies yields an empty candidate set;
	// the caller surfaces it as a blocked step, not an error.
	step := StepSpec{ItemType: ItemDrinks, Quantity: 1, SizeRestriction: "Bucket"}
	assert.Empty(t, EligibleItems(step, items, m, ""))
}
