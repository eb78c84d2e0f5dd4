package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

// Storefront is the customer-facing adapter: a step-by-step wizard with
// next/prev/skip navigation and the pizza subcategory filter.
type Storefront struct {
	core *Handler
}

func (s *Storefront) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /storefront/combos", s.listCombos)
	mux.HandleFunc("POST /storefront/combos/{comboID}/sessions", s.create)
	mux.HandleFunc("GET /storefront/sessions/{id}", s.get)
	mux.HandleFunc("GET /storefront/sessions/{id}/candidates", s.candidates)
	mux.HandleFunc("POST /storefront/sessions/{id}/select", s.selectItem)
	mux.HandleFunc("POST /storefront/sessions/{id}/next", s.next)
	mux.HandleFunc("POST /storefront/sessions/{id}/prev", s.prev)
	mux.HandleFunc("POST /storefront/sessions/{id}/skip", s.skip)
	mux.HandleFunc("POST /storefront/sessions/{id}/jump", s.jump)
	mux.HandleFunc("DELETE /storefront/sessions/{id}/selections/{index}", s.removeSelection)
	mux.HandleFunc("POST /storefront/sessions/{id}/finish", s.finish)
	mux.HandleFunc("DELETE /storefront/sessions/{id}", s.cancel)
}

func (s *Storefront) listCombos(w http.ResponseWriter, r *http.Request) {
	handleListCombos(s.core, w, r)
}

func (s *Storefront) create(w http.ResponseWriter, r *http.Request) {
	ls, err := s.core.startSession(r.Context(), r.PathValue("comboID"))
	if err != nil {
		if errors.Is(err, combo.ErrTemplateNotFound) {
			writeError(w, http.StatusNotFound, "combo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	var e jx.Encoder
	encodeSessionView(&e, ls)
	writeJSON(w, http.StatusCreated, &e)
}

func (s *Storefront) get(w http.ResponseWriter, r *http.Request) {
	withSession(s.core, w, r, func(ls *liveSession) {
		var e jx.Encoder
		encodeSessionView(&e, ls)
		writeJSON(w, http.StatusOK, &e)
	})
}

func (s *Storefront) candidates(w http.ResponseWriter, r *http.Request) {
	withSession(s.core, w, r, func(ls *liveSession) {
		items := ls.seq.Candidates(r.URL.Query().Get("subcategory"))
		var e jx.Encoder
		encodeCandidates(&e, items)
		writeJSON(w, http.StatusOK, &e)
	})
}

func (s *Storefront) selectItem(w http.ResponseWriter, r *http.Request) {
	handleSelect(s.core, w, r)
}

func (s *Storefront) next(w http.ResponseWriter, r *http.Request) {
	withSession(s.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.GoNext())
	})
}

func (s *Storefront) prev(w http.ResponseWriter, r *http.Request) {
	withSession(s.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.GoPrev())
	})
}

func (s *Storefront) skip(w http.ResponseWriter, r *http.Request) {
	withSession(s.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.Skip())
	})
}

// jump moves directly to any step via the wizard's step indicator; direct
// navigation is ungated, unlike next.
func (s *Storefront) jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	withSession(s.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.JumpTo(req.Step))
	})
}

func (s *Storefront) removeSelection(w http.ResponseWriter, r *http.Request) {
	handleRemove(s.core, w, r)
}

func (s *Storefront) finish(w http.ResponseWriter, r *http.Request) {
	handleFinish(s.core, w, r)
}

func (s *Storefront) cancel(w http.ResponseWriter, r *http.Request) {
	handleCancel(s.core, w, r)
}

// --- Shared request plumbing ---

// handleListCombos renders the browsable combo templates.
func handleListCombos(h *Handler, w http.ResponseWriter, r *http.Request) {
	templates, err := h.combos.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list combos")
		return
	}

	var e jx.Encoder
	encodeTemplates(&e, templates)
	writeJSON(w, http.StatusOK, &e)
}

// withSession resolves the session from the path, serializes access to it,
// and runs fn while the session lock is held.
func withSession(h *Handler, w http.ResponseWriter, r *http.Request, fn func(ls *liveSession)) {
	ls := h.sessions.Get(r.PathValue("id"))
	if ls == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	fn(ls)
}

func renderMoved(w http.ResponseWriter, ls *liveSession, moved bool) {
	var e jx.Encoder
	encodeMoved(&e, moved, ls)
	writeJSON(w, http.StatusOK, &e)
}

// handleSelect decodes the select request, arms the one-shot sub-flow
// delegates with any submitted sub-flow result, and runs the selection.
func handleSelect(h *Handler, w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId is required")
		return
	}

	withSession(h, w, r, func(ls *liveSession) {
		var pizza *session.PizzaResult
		if req.Pizza != nil {
			pizza = req.Pizza.toResult()
		}
		ls.pending.arm(pizza, req.Flavor)

		outcome, err := ls.seq.SelectItem(r.Context(), req.ItemID, req.Subcategory)
		if err != nil {
			mapSelectError(w, err)
			return
		}

		var e jx.Encoder
		encodeOutcome(&e, outcome, ls)
		writeJSON(w, http.StatusOK, &e)
	})
}

func handleRemove(h *Handler, w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid selection index")
		return
	}
	stepID := r.URL.Query().Get("step")
	if stepID == "" {
		writeError(w, http.StatusBadRequest, "step query parameter is required")
		return
	}

	withSession(h, w, r, func(ls *liveSession) {
		removed := ls.seq.RemoveSelection(index, stepID)
		var e jx.Encoder
		e.Obj(func(e *jx.Encoder) {
			e.Field("removed", func(e *jx.Encoder) { e.Bool(removed) })
			e.Field("session", func(e *jx.Encoder) { encodeSessionView(e, ls) })
		})
		writeJSON(w, http.StatusOK, &e)
	})
}

// handleFinish folds the session into a cart entry. The session leaves the
// registry only after a successful append.
func handleFinish(h *Handler, w http.ResponseWriter, r *http.Request) {
	withSession(h, w, r, func(ls *liveSession) {
		entry, err := ls.seq.Finish(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotReady):
				writeError(w, http.StatusConflict, "combo is not complete")
			case errors.Is(err, session.ErrSessionClosed):
				writeError(w, http.StatusConflict, "session already closed")
			default:
				writeError(w, http.StatusInternalServerError, "failed to append to cart")
			}
			return
		}

		h.sessions.Remove(ls.id)
		var e jx.Encoder
		encodeCartEntry(&e, entry)
		writeJSON(w, http.StatusOK, &e)
	})
}

func handleCancel(h *Handler, w http.ResponseWriter, r *http.Request) {
	withSession(h, w, r, func(ls *liveSession) {
		ls.seq.Cancel()
		h.sessions.Remove(ls.id)
		w.WriteHeader(http.StatusNoContent)
	})
}

// mapSelectError converts selection errors to HTTP error responses. Business
// rejections never reach here; they are outcomes.
func mapSelectError(w http.ResponseWriter, err error) {
	var ineErr *session.ItemNotEligibleError
	if errors.As(err, &ineErr) {
		writeError(w, http.StatusUnprocessableEntity, ineErr.Error())
		return
	}

	var ufErr *session.UnknownFlavorError
	if errors.As(err, &ufErr) {
		writeError(w, http.StatusUnprocessableEntity, ufErr.Error())
		return
	}

	if errors.Is(err, ErrSizeViolation) {
		writeError(w, http.StatusUnprocessableEntity, ErrSizeViolation.Error())
		return
	}

	if errors.Is(err, session.ErrSessionClosed) {
		writeError(w, http.StatusConflict, "session already closed")
		return
	}

	writeError(w, http.StatusInternalServerError, "selection failed")
}
