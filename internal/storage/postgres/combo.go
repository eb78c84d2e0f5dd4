package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slicehouse/combo-configurator/internal/domain/combo"
)

var _ combo.Repository = (*ComboRepository)(nil)

// ComboRepository implements combo.Repository backed by PostgreSQL.
type ComboRepository struct {
	pool *pgxpool.Pool
}

// NewComboRepository returns a ComboRepository that uses the given pool.
func NewComboRepository(pool *pgxpool.Pool) *ComboRepository {
	return &ComboRepository{pool: pool}
}

// GetTemplate returns a combo template with its steps ordered by sort_order.
// Returns combo.ErrTemplateNotFound when no matching template exists.
func (r *ComboRepository) GetTemplate(ctx context.Context, comboID string) (*combo.Template, error) {
	var tpl combo.Template
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, base_price, image_url
		FROM combo_templates
		WHERE id = $1`, comboID).
		Scan(&tpl.ID, &tpl.Name, &tpl.BasePrice, &tpl.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, combo.ErrTemplateNotFound
		}
		return nil, errors.Wrapf(err, "get template %q", comboID)
	}

	steps, err := r.stepsFor(ctx, comboID)
	if err != nil {
		return nil, err
	}
	tpl.Steps = steps
	return &tpl, nil
}

// ListTemplates returns all combo templates with their steps.
func (r *ComboRepository) ListTemplates(ctx context.Context) ([]combo.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, base_price, image_url
		FROM combo_templates
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}

	templates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (combo.Template, error) {
		var tpl combo.Template
		err := row.Scan(&tpl.ID, &tpl.Name, &tpl.BasePrice, &tpl.ImageURL)
		return tpl, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan templates")
	}

	for i := range templates {
		steps, err := r.stepsFor(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Steps = steps
	}
	return templates, nil
}

func (r *ComboRepository) stepsFor(ctx context.Context, comboID string) ([]combo.StepSpec, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, item_type, quantity, size_restriction, required, chargeable, sort_order
		FROM combo_steps
		WHERE combo_id = $1
		ORDER BY sort_order`, comboID)
	if err != nil {
		return nil, errors.Wrapf(err, "list steps for %q", comboID)
	}

	steps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (combo.StepSpec, error) {
		var step combo.StepSpec
		err := row.Scan(&step.ID, &step.ItemType, &step.Quantity,
			&step.SizeRestriction, &step.Required, &step.Chargeable, &step.SortOrder)
		return step, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan steps for %q", comboID)
	}
	return steps, nil
}

// UpsertTemplate writes a combo template and replaces its steps in one
// transaction.
func (r *ComboRepository) UpsertTemplate(ctx context.Context, tpl combo.Template) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO combo_templates (id, name, base_price, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			base_price = EXCLUDED.base_price,
			image_url = EXCLUDED.image_url`,
		tpl.ID, tpl.Name, tpl.BasePrice, tpl.ImageURL)
	if err != nil {
		return errors.Wrapf(err, "upsert template %q", tpl.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM combo_steps WHERE combo_id = $1`, tpl.ID); err != nil {
		return errors.Wrapf(err, "clear steps for %q", tpl.ID)
	}
	for i, step := range tpl.Steps {
		_, err := tx.Exec(ctx, `
			INSERT INTO combo_steps
				(id, combo_id, item_type, quantity, size_restriction, required, chargeable, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			step.ID, tpl.ID, step.ItemType, step.Quantity,
			step.SizeRestriction, step.Required, step.Chargeable, i)
		if err != nil {
			return errors.Wrapf(err, "insert step %q", step.ID)
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}
