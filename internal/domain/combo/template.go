package combo

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrTemplateNotFound is returned when a requested combo template does not exist.
var ErrTemplateNotFound = errors.New("combo template not found")

// ItemType enumerates the kinds of items a combo step can ask for.
type ItemType string

const (
	// ItemPizza requires the pizza customization sub-flow on selection.
	ItemPizza ItemType = "pizza"
	// ItemWings requires the flavor picker sub-flow on selection.
	ItemWings ItemType = "wings"
	// ItemDrinks is a simple selection with optional size-based pricing.
	ItemDrinks ItemType = "drinks"
	// ItemDippingSauce is a simple selection with optional size-based pricing.
	ItemDippingSauce ItemType = "dipping_sauce"
)

// StepSpec describes one slot of a combo template. Quantity is the nominal
// requirement; the effective requirement comes from Rules.RequiredCount.
type StepSpec struct {
	ID              string
	ItemType        ItemType
	Quantity        int
	SizeRestriction string
	Required        bool
	Chargeable      bool
	SortOrder       int
}

// Template is a bundled multi-item offer. Steps are ordered by SortOrder and
// define the wizard progression.
type Template struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	ImageURL  string
	Steps     []StepSpec
}

// StepByID returns the step with the given ID, or nil.
func (t *Template) StepByID(id string) *StepSpec {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return &t.Steps[i]
		}
	}
	return nil
}

// Repository defines read operations for combo templates.
type Repository interface {
	GetTemplate(ctx context.Context, comboID string) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
}
