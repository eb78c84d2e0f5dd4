package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredCount(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		step StepSpec
		want int
	}{
		{
			name: "literal quantity for non-wings",
			step: StepSpec{ItemType: ItemPizza, Quantity: 2, SizeRestriction: "Large"},
			want: 2,
		},
		{
			name: "wings 12 pieces is one unit",
			step: StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "12 Pieces"},
			want: 1,
		},
		{
			name: "wings 24 pieces is two units",
			step: StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "24 Pieces"},
			want: 2,
		},
		{
			name: "wings 30 pieces rounds up to three units",
			step: StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "30 Pieces"},
			want: 3,
		},
		{
			name: "wings piece pattern is case-insensitive",
			step: StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "24 pieces"},
			want: 2,
		},
		{
			name: "wings without piece restriction falls back to quantity",
			step: StepSpec{ItemType: ItemWings, Quantity: 3, SizeRestriction: ""},
			want: 3,
		},
		{
			name: "non-piece restriction on wings falls back to quantity",
			step: StepSpec{ItemType: ItemWings, Quantity: 2, SizeRestriction: "Large"},
			want: 2,
		},
		{
			name: "piece pattern on drinks is ignored",
			step: StepSpec{ItemType: ItemDrinks, Quantity: 1, SizeRestriction: "24 Pieces"},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.RequiredCount(tt.step))
		})
	}
}

func TestRequiredCount_ConfigurablePiecesPerUnit(t *testing.T) {
	rules := Rules{WingsPiecesPerUnit: 8}
	step := StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "24 Pieces"}
	assert.Equal(t, 3, rules.RequiredCount(step))

	// A zero unit size falls back to the default instead of dividing by zero.
	rules = Rules{}
	assert.Equal(t, 2, rules.RequiredCount(step))
}

func TestRequiredCount_Deterministic(t *testing.T) {
	rules := DefaultRules()
	step := StepSpec{ItemType: ItemWings, Quantity: 1, SizeRestriction: "30 Pieces"}
	for range 5 {
		assert.Equal(t, 3, rules.RequiredCount(step))
	}
}
