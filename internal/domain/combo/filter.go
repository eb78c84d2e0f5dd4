package combo

import (
	"strings"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

// CategoryFor maps a step's item type to the catalog category it draws from.
func CategoryFor(t ItemType) string {
	switch t {
	case ItemPizza:
		return catalog.CategoryPizza
	case ItemWings:
		return catalog.CategoryChickenWings
	case ItemDrinks:
		return catalog.CategoryDrinks
	case ItemDippingSauce:
		return catalog.CategoryDippingSauce
	default:
		return ""
	}
}

// EligibleItems returns the subset of items a step may select from.
//
// An item is eligible when its category maps to the step's item type (wings
// additionally require "wings" in the item name), it exposes a size matching
// the step's size restriction when one is set, and, for pizza steps with an
// active subcategory filter, its subcategory equals the filter
// case-insensitively.
//
// The result is recomputed on every call and must not be cached against
// catalog or filter changes.
func EligibleItems(step StepSpec, items []catalog.Item, matcher *SizeMatcher, subcategoryFilter string) []catalog.Item {
	category := CategoryFor(step.ItemType)

	// A wings "N Pieces" restriction expresses a total piece count consumed by
	// Rules.RequiredCount; it does not constrain catalog sizes.
	sizeRestriction := step.SizeRestriction
	if step.ItemType == ItemWings {
		if _, ok := parsePieceCount(sizeRestriction); ok {
			sizeRestriction = ""
		}
	}

	eligible := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if item.Category != category {
			continue
		}
		if step.ItemType == ItemWings && !strings.Contains(strings.ToLower(item.Name), "wings") {
			continue
		}
		if sizeRestriction != "" && !matcher.HasMatchingSize(item, sizeRestriction) {
			continue
		}
		if step.ItemType == ItemPizza && subcategoryFilter != "" &&
			!strings.EqualFold(item.Subcategory, subcategoryFilter) {
			continue
		}
		eligible = append(eligible, item)
	}
	return eligible
}
