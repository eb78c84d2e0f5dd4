// Package handler exposes the combo configurator core over HTTP through two
// thin presentation adapters: the customer storefront and the staff
// point-of-sale. Both adapters only translate requests into sequencer
// operations and session state into view models; every business rule lives in
// the domain packages, so the two surfaces cannot drift.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

// Config holds non-dependency configuration for the handler.
type Config struct {
	// Rules are the quantity-resolution rules applied to every session.
	Rules combo.Rules
}

// Handler owns the shared configurator core consumed by both adapters.
type Handler struct {
	combos   combo.Repository
	catalog  catalog.Repository
	cart     session.CartAppender
	matcher  *combo.SizeMatcher
	rules    combo.Rules
	sessions *Registry
}

// NewHandler constructs the shared core with the required collaborators.
func NewHandler(
	cfg Config,
	combos combo.Repository,
	items catalog.Repository,
	cart session.CartAppender,
) *Handler {
	return &Handler{
		combos:   combos,
		catalog:  items,
		cart:     cart,
		matcher:  combo.NewSizeMatcher(),
		rules:    cfg.Rules,
		sessions: NewRegistry(),
	}
}

// Routes mounts both presentation adapters on one mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	(&Storefront{core: h}).register(mux)
	(&POS{core: h}).register(mux)
	return mux
}

// startSession loads the template, snapshots the eligible slice of the
// catalog, and registers a fresh sequencer. The snapshot stays immutable for
// the session's lifetime.
func (h *Handler) startSession(ctx context.Context, comboID string) (*liveSession, error) {
	tpl, err := h.combos.GetTemplate(ctx, comboID)
	if err != nil {
		return nil, errors.Wrap(err, "get template")
	}

	items, err := h.snapshotCatalog(ctx, tpl)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot catalog")
	}

	pending := &pendingDelegates{matcher: h.matcher}
	seq := session.NewSequencer(tpl, h.rules, items, h.matcher, pending, pending, h.cart)
	return h.sessions.Add(seq, pending), nil
}

// snapshotCatalog fetches the catalog categories the template's steps draw
// from, once per distinct category.
func (h *Handler) snapshotCatalog(ctx context.Context, tpl *combo.Template) ([]catalog.Item, error) {
	seen := make(map[string]bool, len(tpl.Steps))
	var items []catalog.Item
	for _, step := range tpl.Steps {
		category := combo.CategoryFor(step.ItemType)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true

		batch, err := h.catalog.ListItems(ctx, category)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s items", category)
		}
		items = append(items, batch...)
	}
	return items, nil
}
