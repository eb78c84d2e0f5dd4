package session

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

// ErrCancelled is returned by sub-flow delegates when the user backs out.
// The sequencer treats it as a no-op, never as a failure.
var ErrCancelled = errors.New("sub-flow cancelled")

// DefaultWingFlavors is the fixed flavor list offered by the flavor picker.
var DefaultWingFlavors = []string{
	"BBQ",
	"Buffalo Mild",
	"Buffalo Hot",
	"Honey Garlic",
	"Salt & Pepper",
	"Plain",
}

// PizzaResult is what the pizza customization sub-flow hands back on
// completion: the customization payload and the sub-flow's own total price.
// Internal pricing rules of the sub-flow are out of scope here; the
// configurator only consumes the total.
type PizzaResult struct {
	Customization PizzaCustomization
	TotalPrice    decimal.Decimal
}

// PizzaCustomizer is the pizza customization sub-flow delegate. The step's
// size restriction is passed through as a hard constraint on the sizes the
// sub-flow may offer. Implementations return ErrCancelled when the user
// cancels.
type PizzaCustomizer interface {
	Customize(ctx context.Context, item catalog.Item, sizeRestriction string) (*PizzaResult, error)
}

// FlavorPicker is the wings flavor picker delegate. It offers exactly the
// given fixed flavor list and returns the picked flavor, or ErrCancelled.
type FlavorPicker interface {
	Pick(ctx context.Context, flavors []string) (string, error)
}

// CartAppender is the sole write boundary of the configurator. Append is
// called exactly once per successfully finished session.
type CartAppender interface {
	Append(ctx context.Context, entry *CartEntry) error
}

// CartSelection is one configured selection inside a cart entry.
type CartSelection struct {
	ItemType    string
	ItemName    string
	Flavor      string
	Pizza       *PizzaCustomization
	ExtraCharge decimal.Decimal
}

// CartEntry is the immutable composite record emitted on finish, representing
// the whole configured combo as one cart line.
type CartEntry struct {
	ID               string
	ComboID          string
	ComboName        string
	ComboBasePrice   decimal.Decimal
	Selections       []CartSelection
	TotalExtraCharge decimal.Decimal
	FinalPrice       decimal.Decimal
}
