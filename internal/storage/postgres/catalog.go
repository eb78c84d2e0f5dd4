package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListItems returns all items of a category with their sizes in declared
// order.
func (r *CatalogRepository) ListItems(ctx context.Context, category string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, base_price, subcategory
		FROM catalog_items
		WHERE category = $1
		ORDER BY id`, category)
	if err != nil {
		return nil, errors.Wrapf(err, "list %q items", category)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Item, error) {
		var item catalog.Item
		err := row.Scan(&item.ID, &item.Name, &item.Category, &item.BasePrice, &item.Subcategory)
		return item, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %q items", category)
	}

	if err := r.attachSizes(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns a single item by its identifier.
func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	var item catalog.Item
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, category, base_price, subcategory
		FROM catalog_items
		WHERE id = $1`, id).
		Scan(&item.ID, &item.Name, &item.Category, &item.BasePrice, &item.Subcategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get item %q", id)
	}

	items := []catalog.Item{item}
	if err := r.attachSizes(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attachSizes loads the sizes for all given items in one query.
func (r *CatalogRepository) attachSizes(ctx context.Context, items []catalog.Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT item_id, id, name, price
		FROM item_sizes
		WHERE item_id = ANY($1)
		ORDER BY item_id, position`, ids)
	if err != nil {
		return errors.Wrap(err, "list item sizes")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID string
			size   catalog.Size
		)
		if err := rows.Scan(&itemID, &size.ID, &size.Name, &size.Price); err != nil {
			return errors.Wrap(err, "scan item size")
		}
		i := index[itemID]
		items[i].Sizes = append(items[i].Sizes, size)
	}
	return rows.Err()
}

// UpsertItem writes an item and replaces its sizes in one transaction.
// Size positions follow slice order so declaration order survives round trips.
func (r *CatalogRepository) UpsertItem(ctx context.Context, item catalog.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO catalog_items (id, name, category, base_price, subcategory)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			base_price = EXCLUDED.base_price,
			subcategory = EXCLUDED.subcategory`,
		item.ID, item.Name, item.Category, item.BasePrice, item.Subcategory)
	if err != nil {
		return errors.Wrapf(err, "upsert item %q", item.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM item_sizes WHERE item_id = $1`, item.ID); err != nil {
		return errors.Wrapf(err, "clear sizes for %q", item.ID)
	}
	for i, size := range item.Sizes {
		_, err := tx.Exec(ctx, `
			INSERT INTO item_sizes (id, item_id, name, price, position)
			VALUES ($1, $2, $3, $4, $5)`,
			size.ID, item.ID, size.Name, size.Price, i)
		if err != nil {
			return errors.Wrapf(err, "insert size %q", size.ID)
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}
