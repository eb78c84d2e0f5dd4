package combo

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultWingsPiecesPerUnit is the number of pieces in a single catalog wings
// item when the template does not configure its own value.
const DefaultWingsPiecesPerUnit = 12

// piecesPattern recognizes size restrictions that express a total piece count,
// e.g. "24 Pieces" or "12 pieces".
var piecesPattern = regexp.MustCompile(`(?i)^(\d+)\s*pieces?$`)

// Rules holds the tunable quantity-resolution parameters for a configurator
// session.
type Rules struct {
	// WingsPiecesPerUnit is how many pieces one catalog wings item contains.
	WingsPiecesPerUnit int
}

// DefaultRules returns the rules used when no overrides are configured.
func DefaultRules() Rules {
	return Rules{WingsPiecesPerUnit: DefaultWingsPiecesPerUnit}
}

// RequiredCount resolves the number of selections a step demands.
//
// The default is the step's literal Quantity. A wings step whose size
// restriction reads "N Pieces" expresses a total piece count instead of a unit
// count; the requirement becomes ceil(N / WingsPiecesPerUnit).
func (r Rules) RequiredCount(step StepSpec) int {
	if step.ItemType == ItemWings {
		if pieces, ok := parsePieceCount(step.SizeRestriction); ok {
			unit := r.WingsPiecesPerUnit
			if unit <= 0 {
				unit = DefaultWingsPiecesPerUnit
			}
			return (pieces + unit - 1) / unit
		}
	}
	return step.Quantity
}

// parsePieceCount extracts N from an "N Pieces" size restriction.
func parsePieceCount(restriction string) (int, bool) {
	m := piecesPattern.FindStringSubmatch(strings.TrimSpace(restriction))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
