package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/slicehouse/combo-configurator/internal/domain/combo"
)

// POS is the staff-facing adapter. It shares every operation with the
// storefront and adds direct step navigation plus a compact all-steps summary
// for speed at the counter.
type POS struct {
	core *Handler
}

func (p *POS) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /pos/combos", p.listCombos)
	mux.HandleFunc("POST /pos/combos/{comboID}/sessions", p.create)
	mux.HandleFunc("GET /pos/sessions/{id}", p.get)
	mux.HandleFunc("GET /pos/sessions/{id}/summary", p.summary)
	mux.HandleFunc("GET /pos/sessions/{id}/candidates", p.candidates)
	mux.HandleFunc("POST /pos/sessions/{id}/select", p.selectItem)
	mux.HandleFunc("POST /pos/sessions/{id}/next", p.next)
	mux.HandleFunc("POST /pos/sessions/{id}/prev", p.prev)
	mux.HandleFunc("POST /pos/sessions/{id}/skip", p.skip)
	mux.HandleFunc("POST /pos/sessions/{id}/jump", p.jump)
	mux.HandleFunc("DELETE /pos/sessions/{id}/selections/{index}", p.removeSelection)
	mux.HandleFunc("POST /pos/sessions/{id}/finish", p.finish)
	mux.HandleFunc("DELETE /pos/sessions/{id}", p.cancel)
}

func (p *POS) listCombos(w http.ResponseWriter, r *http.Request) {
	handleListCombos(p.core, w, r)
}

func (p *POS) create(w http.ResponseWriter, r *http.Request) {
	ls, err := p.core.startSession(r.Context(), r.PathValue("comboID"))
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

func (p *POS) get(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		var e jx.Encoder
		encodeSessionView(&e, ls)
		writeJSON(w, http.StatusOK, &e)
	})
}

func (p *POS) summary(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		var e jx.Encoder
		encodeSummary(&e, ls)
		writeJSON(w, http.StatusOK, &e)
	})
}

func (p *POS) candidates(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		items := ls.seq.Candidates(r.URL.Query().Get("subcategory"))
		var e jx.Encoder
		encodeCandidates(&e, items)
		writeJSON(w, http.StatusOK, &e)
	})
}

func (p *POS) selectItem(w http.ResponseWriter, r *http.Request) {
	handleSelect(p.core, w, r)
}

func (p *POS) next(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.GoNext())
	})
}

func (p *POS) prev(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.GoPrev())
	})
}

func (p *POS) skip(w http.ResponseWriter, r *http.Request) {
	withSession(p.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.Skip())
	})
}

// jump moves directly to any step. Direct navigation is ungated for staff,
// matching the step indicator behaviour.
func (p *POS) jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	withSession(p.core, w, r, func(ls *liveSession) {
		renderMoved(w, ls, ls.seq.JumpTo(req.Step))
	})
}

func (p *POS) removeSelection(w http.ResponseWriter, r *http.Request) {
	handleRemove(p.core, w, r)
}

func (p *POS) finish(w http.ResponseWriter, r *http.Request) {
	handleFinish(p.core, w, r)
}

func (p *POS) cancel(w http.ResponseWriter, r *http.Request) {
	handleCancel(p.core, w, r)
}
