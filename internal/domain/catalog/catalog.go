package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested catalog item does not exist.
var ErrNotFound = errors.New("catalog item not found")

// Category names as stored by the menu subsystem.
const (
	CategoryPizza        = "pizza"
	CategoryChickenWings = "chicken-wings"
	CategoryDrinks       = "drinks"
	CategoryDippingSauce = "dipping-sauce"
)

// Size is one purchasable size of a catalog item.
type Size struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Item is a menu item as served by the catalog subsystem. Items are
// immutable for the duration of a configurator session.
type Item struct {
	ID          string
	Name        string
	Category    string
	BasePrice   decimal.Decimal
	Sizes       []Size
	Subcategory string
}

// SizeByID returns the size with the given ID, or nil.
func (i Item) SizeByID(id string) *Size {
	for idx := range i.Sizes {
		if i.Sizes[idx].ID == id {
			return &i.Sizes[idx]
		}
	}
	return nil
}

// Repository defines read operations against the menu catalog.
// The catalog subsystem owns the data; the configurator only reads it.
type Repository interface {
	ListItems(ctx context.Context, category string) ([]Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
}
