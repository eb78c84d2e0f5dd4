// Command menu-import ingests gzipped menu export files into the catalog.
//
// Franchise back offices export their menus as gzip-compressed JSON Lines,
// one catalog item per line. Exports from different locations overlap
// heavily, so the importer first scans all files concurrently to build bloom
// filters of item IDs, then streams them again in order, upserting each item
// the first time its ID is seen. Within the overlap set, earlier files win.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 50_000
)

// exportLine is one catalog item as emitted by the franchise export.
type exportLine struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Subcategory string          `json:"subcategory"`
	Sizes       []struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"sizes"`
}

func (l exportLine) valid() bool {
	return l.ID != "" && l.Name != "" && l.Category != ""
}

func (l exportLine) item() catalog.Item {
	item := catalog.Item{
		ID:          l.ID,
		Name:        l.Name,
		Category:    l.Category,
		BasePrice:   l.BasePrice,
		Subcategory: l.Subcategory,
	}
	for _, s := range l.Sizes {
		item.Sizes = append(item.Sizes, catalog.Size{ID: s.ID, Name: s.Name, Price: s.Price})
	}
	return item
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("usage: menu-import [flags] export1.jsonl.gz [export2.jsonl.gz ...]")
		os.Exit(1)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("menu import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("menu import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: scan all exports concurrently, building one bloom filter of
	// item IDs per file. The filters only exist to report overlap; the
	// authoritative dedupe in pass 2 is exact.
	slog.Info("pass 1: scanning exports", slog.Int("files", len(files)))

	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "scan exports")
	}
	reportOverlap(files, filters)

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Pass 2: stream the files again in argument order and upsert each item
	// the first time its ID appears.
	slog.Info("pass 2: importing items")

	return importItems(ctx, postgres.NewCatalogRepository(pool), files)
}

// buildFilters streams every file concurrently and fills one bloom filter of
// item IDs per file.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func scanFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var total, invalid uint64

		if err := streamLines(ctx, path, func(data []byte) {
			total++
			if total%progressEvery == 0 {
				slog.Info("pass 1 progress", slog.Int("file", idx+1), slog.Uint64("lines", total))
			}

			var line exportLine
			if err := json.Unmarshal(data, &line); err != nil || !line.valid() {
				invalid++
				return
			}
			filter.AddString(line.ID)
		}); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", total),
			slog.Uint64("invalid", invalid),
		)

		filters[idx] = filter
		return nil
	}
}

// reportOverlap logs an approximate cross-file duplicate count per file pair.
func reportOverlap(files []string, filters []*bloom.BloomFilter) {
	for i := range filters {
		for j := i + 1; j < len(filters); j++ {
			approx := filters[i].ApproximatedSize()
			if other := filters[j].ApproximatedSize(); other < approx {
				approx = other
			}
			slog.Info("export overlap candidates",
				slog.String("first", files[i]),
				slog.String("second", files[j]),
				slog.Uint64("upper_bound", uint64(approx)),
			)
		}
	}
}

// importItems streams the files sequentially and upserts every item ID once.
func importItems(ctx context.Context, repo *postgres.CatalogRepository, files []string) error {
	seen := make(map[string]struct{})
	var imported, skipped uint64

	for _, path := range files {
		if err := streamLines(ctx, path, func(data []byte) {
			var line exportLine
			if err := json.Unmarshal(data, &line); err != nil || !line.valid() {
				return
			}
			if _, ok := seen[line.ID]; ok {
				skipped++
				return
			}
			seen[line.ID] = struct{}{}

			if err := repo.UpsertItem(ctx, line.item()); err != nil {
				slog.Error("upsert failed", slog.String("id", line.ID), slog.String("error", err.Error()))
				return
			}
			imported++
			if imported%progressEvery == 0 {
				slog.Info("pass 2 progress", slog.Uint64("imported", imported))
			}
		}); err != nil {
			return errors.Wrapf(err, "import %s", path)
		}
	}

	slog.Info("import finished", slog.Uint64("imported", imported), slog.Uint64("duplicates_skipped", skipped))
	return nil
}

// streamLines opens a gzip-compressed file and calls fn for each line.
func streamLines(ctx context.Context, path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
