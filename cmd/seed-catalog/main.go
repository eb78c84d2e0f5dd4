package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/storage/postgres"
)

type sizeJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type itemJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Subcategory string          `json:"subcategory"`
	Sizes       []sizeJSON      `json:"sizes"`
}

type stepJSON struct {
	ID              string `json:"id"`
	ItemType        string `json:"itemType"`
	Quantity        int    `json:"quantity"`
	SizeRestriction string `json:"sizeRestriction"`
	Required        bool   `json:"required"`
	Chargeable      bool   `json:"chargeable"`
}

type comboJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"basePrice"`
	ImageURL  string          `json:"imageUrl"`
	Steps     []stepJSON      `json:"steps"`
}

type menuJSON struct {
	Items  []itemJSON  `json:"items"`
	Combos []comboJSON `json:"combos"`
}

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	slog.Info("reading menu file", slog.String("path", menuFile))

	data, err := os.ReadFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var menu menuJSON
	if err := json.Unmarshal(data, &menu); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedItems(ctx, postgres.NewCatalogRepository(pool), menu.Items); err != nil {
		return errors.Wrap(err, "seed items")
	}
	if err := seedCombos(ctx, postgres.NewComboRepository(pool), menu.Combos); err != nil {
		return errors.Wrap(err, "seed combos")
	}

	return nil
}

func seedItems(ctx context.Context, repo *postgres.CatalogRepository, items []itemJSON) error {
	slog.Info("upserting catalog items", slog.Int("count", len(items)))

	for _, it := range items {
		item := catalog.Item{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			BasePrice:   it.BasePrice,
			Subcategory: it.Subcategory,
		}
		for _, s := range it.Sizes {
			item.Sizes = append(item.Sizes, catalog.Size{ID: s.ID, Name: s.Name, Price: s.Price})
		}

		if err := repo.UpsertItem(ctx, item); err != nil {
			return errors.Wrapf(err, "upsert item %s", it.ID)
		}

		slog.Info("upserted item", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	return nil
}

func seedCombos(ctx context.Context, repo *postgres.ComboRepository, combos []comboJSON) error {
	slog.Info("upserting combo templates", slog.Int("count", len(combos)))

	for _, c := range combos {
		tpl := combo.Template{
			ID:        c.ID,
			Name:      c.Name,
			BasePrice: c.BasePrice,
			ImageURL:  c.ImageURL,
		}
		for i, s := range c.Steps {
			quantity := s.Quantity
			if quantity == 0 {
				quantity = 1
			}
			tpl.Steps = append(tpl.Steps, combo.StepSpec{
				ID:              s.ID,
				ItemType:        combo.ItemType(s.ItemType),
				Quantity:        quantity,
				SizeRestriction: s.SizeRestriction,
				Required:        s.Required,
				Chargeable:      s.Chargeable,
				SortOrder:       i,
			})
		}

		if err := repo.UpsertTemplate(ctx, tpl); err != nil {
			return errors.Wrapf(err, "upsert combo %s", c.ID)
		}

		slog.Info("upserted combo", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}
