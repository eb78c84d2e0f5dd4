package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/slicehouse/combo-configurator/internal/domain/catalog"
	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

// writeJSON sends an encoded body with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError sends the shared {code, message} error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

// encodeSessionView renders the full wizard state consumed by the storefront.
func encodeSessionView(e *jx.Encoder, ls *liveSession) {
	st := ls.seq.State()
	e.Obj(func(e *jx.Encoder) {
		e.Field("sessionId", func(e *jx.Encoder) { e.Str(ls.id) })
		e.Field("comboId", func(e *jx.Encoder) { e.Str(st.Template.ID) })
		e.Field("comboName", func(e *jx.Encoder) { e.Str(st.Template.Name) })
		e.Field("basePrice", func(e *jx.Encoder) { e.Str(st.Template.BasePrice.StringFixed(2)) })
		e.Field("currentStep", func(e *jx.Encoder) { e.Int(st.CurrentStep) })
		e.Field("totalExtraCharge", func(e *jx.Encoder) { e.Str(st.TotalExtraCharge().StringFixed(2)) })
		e.Field("finalPrice", func(e *jx.Encoder) { e.Str(st.FinalPrice().StringFixed(2)) })
		e.Field("isComplete", func(e *jx.Encoder) { e.Bool(st.IsComplete()) })
		e.Field("canGoNext", func(e *jx.Encoder) { e.Bool(ls.seq.CanGoNext()) })
		e.Field("canFinish", func(e *jx.Encoder) { e.Bool(ls.seq.CanFinish()) })
		e.Field("steps", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, step := range st.Template.Steps {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(step.ID) })
						e.Field("itemType", func(e *jx.Encoder) { e.Str(string(step.ItemType)) })
						e.Field("sizeRestriction", func(e *jx.Encoder) { e.Str(step.SizeRestriction) })
						e.Field("required", func(e *jx.Encoder) { e.Bool(step.Required) })
						e.Field("chargeable", func(e *jx.Encoder) { e.Bool(step.Chargeable) })
						e.Field("requiredCount", func(e *jx.Encoder) { e.Int(st.Rules.RequiredCount(step)) })
						e.Field("selectedCount", func(e *jx.Encoder) { e.Int(st.SelectionCount(step.ID)) })
						e.Field("satisfied", func(e *jx.Encoder) { e.Bool(st.StepSatisfied(step)) })
					})
				}
			})
		})
		e.Field("selections", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i, sel := range st.Selections {
					encodeSelection(e, i, sel)
				}
			})
		})
	})
}

func encodeSelection(e *jx.Encoder, index int, sel session.Selection) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("index", func(e *jx.Encoder) { e.Int(index) })
		e.Field("stepId", func(e *jx.Encoder) { e.Str(sel.StepID) })
		e.Field("itemType", func(e *jx.Encoder) { e.Str(string(sel.ItemType)) })
		e.Field("itemId", func(e *jx.Encoder) { e.Str(sel.ItemID) })
		e.Field("itemName", func(e *jx.Encoder) { e.Str(sel.ItemName) })
		if sel.Flavor != "" {
			e.Field("flavor", func(e *jx.Encoder) { e.Str(sel.Flavor) })
		}
		if sel.Pizza != nil {
			e.Field("pizza", func(e *jx.Encoder) { encodePizza(e, sel.Pizza) })
		}
		e.Field("extraCharge", func(e *jx.Encoder) { e.Str(sel.ExtraCharge.StringFixed(2)) })
	})
}

func encodePizza(e *jx.Encoder, p *session.PizzaCustomization) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sizeId", func(e *jx.Encoder) { e.Str(p.Size.ID) })
		e.Field("sizeName", func(e *jx.Encoder) { e.Str(p.Size.Name) })
		e.Field("sizePrice", func(e *jx.Encoder) { e.Str(p.Size.Price.StringFixed(2)) })
		e.Field("toppings", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range p.Toppings {
					e.Str(t)
				}
			})
		})
		e.Field("crust", func(e *jx.Encoder) { e.Str(p.Crust) })
		e.Field("sauce", func(e *jx.Encoder) { e.Str(p.Sauce) })
	})
}

// encodeCandidates renders the eligible item list for the current step.
func encodeCandidates(e *jx.Encoder, items []catalog.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("candidates", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range items {
					encodeItem(e, item)
				}
			})
		})
	})
}

func encodeItem(e *jx.Encoder, item catalog.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
		e.Field("basePrice", func(e *jx.Encoder) { e.Str(item.BasePrice.StringFixed(2)) })
		if item.Subcategory != "" {
			e.Field("subcategory", func(e *jx.Encoder) { e.Str(item.Subcategory) })
		}
		e.Field("sizes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, size := range item.Sizes {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(size.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(size.Name) })
						e.Field("price", func(e *jx.Encoder) { e.Str(size.Price.StringFixed(2)) })
					})
				}
			})
		})
	})
}

// encodeOutcome renders a selection outcome together with the refreshed
// session state, so a rejected attempt is plain UI state rather than an error.
func encodeOutcome(e *jx.Encoder, outcome session.SelectOutcome, ls *liveSession) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("outcome", func(e *jx.Encoder) { e.Str(string(outcome)) })
		e.Field("session", func(e *jx.Encoder) { encodeSessionView(e, ls) })
	})
}

// encodeMoved renders a navigation result with the refreshed state.
func encodeMoved(e *jx.Encoder, moved bool, ls *liveSession) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("moved", func(e *jx.Encoder) { e.Bool(moved) })
		e.Field("session", func(e *jx.Encoder) { encodeSessionView(e, ls) })
	})
}

// encodeCartEntry renders the composite entry emitted on finish.
func encodeCartEntry(e *jx.Encoder, entry *session.CartEntry) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(entry.ID) })
		e.Field("comboId", func(e *jx.Encoder) { e.Str(entry.ComboID) })
		e.Field("comboName", func(e *jx.Encoder) { e.Str(entry.ComboName) })
		e.Field("comboBasePrice", func(e *jx.Encoder) { e.Str(entry.ComboBasePrice.StringFixed(2)) })
		e.Field("totalExtraCharge", func(e *jx.Encoder) { e.Str(entry.TotalExtraCharge.StringFixed(2)) })
		e.Field("finalPrice", func(e *jx.Encoder) { e.Str(entry.FinalPrice.StringFixed(2)) })
		e.Field("selections", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, sel := range entry.Selections {
					e.Obj(func(e *jx.Encoder) {
						e.Field("itemType", func(e *jx.Encoder) { e.Str(sel.ItemType) })
						e.Field("itemName", func(e *jx.Encoder) { e.Str(sel.ItemName) })
						if sel.Flavor != "" {
							e.Field("flavor", func(e *jx.Encoder) { e.Str(sel.Flavor) })
						}
						if sel.Pizza != nil {
							e.Field("pizza", func(e *jx.Encoder) { encodePizza(e, sel.Pizza) })
						}
						e.Field("extraCharge", func(e *jx.Encoder) { e.Str(sel.ExtraCharge.StringFixed(2)) })
					})
				}
			})
		})
	})
}

// encodeTemplates renders the browsable combo list.
func encodeTemplates(e *jx.Encoder, templates []combo.Template) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("combos", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, tpl := range templates {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(tpl.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(tpl.Name) })
						e.Field("basePrice", func(e *jx.Encoder) { e.Str(tpl.BasePrice.StringFixed(2)) })
						if tpl.ImageURL != "" {
							e.Field("imageUrl", func(e *jx.Encoder) { e.Str(tpl.ImageURL) })
						}
						e.Field("steps", func(e *jx.Encoder) { e.Int(len(tpl.Steps)) })
					})
				}
			})
		})
	})
}

// encodeSummary renders the compact all-steps view used by the POS surface.
func encodeSummary(e *jx.Encoder, ls *liveSession) {
	st := ls.seq.State()
	e.Obj(func(e *jx.Encoder) {
		e.Field("sessionId", func(e *jx.Encoder) { e.Str(ls.id) })
		e.Field("comboName", func(e *jx.Encoder) { e.Str(st.Template.Name) })
		e.Field("finalPrice", func(e *jx.Encoder) { e.Str(st.FinalPrice().StringFixed(2)) })
		e.Field("isComplete", func(e *jx.Encoder) { e.Bool(st.IsComplete()) })
		e.Field("canFinish", func(e *jx.Encoder) { e.Bool(ls.seq.CanFinish()) })
		e.Field("steps", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, step := range st.Template.Steps {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(step.ID) })
						e.Field("selectedCount", func(e *jx.Encoder) { e.Int(st.SelectionCount(step.ID)) })
						e.Field("requiredCount", func(e *jx.Encoder) { e.Int(st.Rules.RequiredCount(step)) })
						e.Field("satisfied", func(e *jx.Encoder) { e.Bool(st.StepSatisfied(step)) })
					})
				}
			})
		})
	})
}
