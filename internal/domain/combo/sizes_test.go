package combo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

func sizedItem(name string, sizes ...catalog.Size) catalog.Item {
	return catalog.Item{ID: "i1", Name: name, Sizes: sizes}
}

func TestSizeMatcher_Matches(t *testing.T) {
	m := NewSizeMatcher()

	tests := []struct {
		name        string
		restriction string
		sizeName    string
		want        bool
	}{
		{"empty restriction matches anything", "", "Small", true},
		{"exact", "Large", "Large", true},
		{"case-insensitive", "large", "LARGE", true},
		{"leading token prefix", `Large 14"`, "Large Deep Dish", true},
		{"alias table lg to large", "lg", "Large", true},
		{"alias table 2l to 2 litre", "2L", "2 Litre", true},
		{"mismatched sizes", "Large", "Medium", false},
		{"aliased sizes do not cross", "Small", "Large", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(tt.restriction, tt.sizeName))
		})
	}
}

func TestSizeMatcher_ResolveSize_FirstMatchWins(t *testing.T) {
	m := NewSizeMatcher()
	item := sizedItem("Pepperoni",
		catalog.Size{ID: "s1", Name: "Medium", Price: decimal.RequireFromString("11.99")},
		catalog.Size{ID: "s2", Name: "Large", Price: decimal.RequireFromString("13.99")},
		catalog.Size{ID: "s3", Name: "Large Deep Dish", Price: decimal.RequireFromString("15.99")},
	)

	// Both "Large" and "Large Deep Dish" match; catalog declaration order
	// breaks the tie.
	size := m.ResolveSize(item, "Large")
	require.NotNil(t, size)
	assert.Equal(t, "s2", size.ID)
}

func TestSizeMatcher_ResolveSize_NoMatch(t *testing.T) {
	m := NewSizeMatcher()
	item := sizedItem("Garlic Dip",
		catalog.Size{ID: "s1", Name: "Regular", Price: decimal.RequireFromString("0.99")},
	)
	assert.Nil(t, m.ResolveSize(item, "Large"))
}

func TestSizeMatcher_AddAlias(t *testing.T) {
	m := NewSizeMatcher()
	m.AddAlias("fam", "family")
	m.AddAlias("family", "family")
	assert.True(t, m.Matches("fam", "Family"))
}
