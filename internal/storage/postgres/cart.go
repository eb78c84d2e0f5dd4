package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

var _ session.CartAppender = (*CartRepository)(nil)

// CartRepository implements the cart write port backed by PostgreSQL. Each
// finished session results in exactly one row.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// cartSelectionRow is the persisted shape of one configured selection.
type cartSelectionRow struct {
	ItemType    string                      `json:"itemType"`
	ItemName    string                      `json:"itemName"`
	Flavor      string                      `json:"flavor,omitempty"`
	Pizza       *session.PizzaCustomization `json:"pizza,omitempty"`
	ExtraCharge decimal.Decimal             `json:"extraCharge"`
}

// Append inserts the composite cart entry as a single atomic write.
func (r *CartRepository) Append(ctx context.Context, entry *session.CartEntry) error {
	selections := make([]cartSelectionRow, len(entry.Selections))
	for i, sel := range entry.Selections {
		selections[i] = cartSelectionRow{
			ItemType:    sel.ItemType,
			ItemName:    sel.ItemName,
			Flavor:      sel.Flavor,
			Pizza:       sel.Pizza,
			ExtraCharge: sel.ExtraCharge,
		}
	}

	payload, err := json.Marshal(selections)
	if err != nil {
		return errors.Wrap(err, "marshal cart selections")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO cart_entries
			(id, combo_id, combo_name, combo_base_price, selections, total_extra_charge, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ComboID, entry.ComboName, entry.ComboBasePrice,
		payload, entry.TotalExtraCharge, entry.FinalPrice)
	if err != nil {
		return errors.Wrapf(err, "insert cart entry %q", entry.ID)
	}
	return nil
}
