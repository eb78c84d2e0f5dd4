package combo

import (
	"strings"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

// SizeMatcher resolves textual size restrictions against catalog size names.
//
// Matching consults an explicit alias table first: restriction strings and
// size names that normalize to the same canonical key match exactly. The
// table is maintained alongside the catalog and removes ambiguity for known
// entries. Strings absent from the table fall back to a case-insensitive
// prefix match on the restriction's leading token, which tolerates catalog
// naming variance ("Large 14\"" matches "Large Deep Dish").
//
// When several sizes of one item match the same restriction, the first size
// in catalog declaration order wins.
type SizeMatcher struct {
	aliases map[string]string
}

// NewSizeMatcher returns a matcher seeded with the aliases observed in the
// production catalog.
func NewSizeMatcher() *SizeMatcher {
	return &SizeMatcher{
		aliases: map[string]string{
			"sm":          "small",
			"small":       "small",
			"med":         "medium",
			"medium":      "medium",
			"lg":          "large",
			"large":       "large",
			"xl":          "x-large",
			"x-large":     "x-large",
			"extra large": "x-large",
			"2l":          "2-litre",
			"2 litre":     "2-litre",
			"2 liter":     "2-litre",
			"591ml":       "591-ml",
			"591 ml":      "591-ml",
		},
	}
}

// AddAlias registers an additional alias for a canonical size key.
func (m *SizeMatcher) AddAlias(alias, canonical string) {
	m.aliases[strings.ToLower(strings.TrimSpace(alias))] = canonical
}

// Matches reports whether a size name satisfies a size restriction.
func (m *SizeMatcher) Matches(restriction, sizeName string) bool {
	if restriction == "" {
		return true
	}
	if rk, ok := m.canonical(restriction); ok {
		if sk, ok := m.canonical(sizeName); ok {
			return rk == sk
		}
	}
	token := leadingToken(restriction)
	if token == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(sizeName), token)
}

// ResolveSize returns the first size of item that satisfies the restriction,
// in catalog declaration order, or nil when none match. An empty restriction
// resolves to the item's first size when one exists.
func (m *SizeMatcher) ResolveSize(item catalog.Item, restriction string) *catalog.Size {
	for i := range item.Sizes {
		if m.Matches(restriction, item.Sizes[i].Name) {
			return &item.Sizes[i]
		}
	}
	return nil
}

// HasMatchingSize reports whether the item exposes at least one size
// satisfying the restriction.
func (m *SizeMatcher) HasMatchingSize(item catalog.Item, restriction string) bool {
	return m.ResolveSize(item, restriction) != nil
}

// canonical looks up the full normalized string, then its leading token,
// in the alias table.
func (m *SizeMatcher) canonical(s string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	if key, ok := m.aliases[n]; ok {
		return key, true
	}
	if key, ok := m.aliases[leadingToken(s)]; ok {
		return key, true
	}
	return "", false
}

// leadingToken returns the lowercased first whitespace-separated token.
func leadingToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
