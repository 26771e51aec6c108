package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/middleware"
	"github.com/danadoen/nusaai/internal/modules"
)

func (a *App) ListModules(w http.ResponseWriter, r *http.Request) {
	type item struct {
		Name            string `json:"name"`
		RequiresAccount bool   `json:"requires_account"`
	}
	var items []item
	for _, name := range modules.Names() {
		def, _ := modules.Lookup(string(name))
		items = append(items, item{Name: string(name), RequiresAccount: def.RequiresAccount})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// RunModule renders a themed prompt and generates it. Identified callers get
// a history entry for each successful run.
func (a *App) RunModule(w http.ResponseWriter, r *http.Request) {
	def, ok := modules.Lookup(chi.URLParam(r, "module"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown module")
		return
	}
	var in modules.Input
	if err := a.decode(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	if def.RequiresAccount && caller.IsAnonymous() {
		a.fail(w, r, domain.ErrAccountRequired)
		return
	}

	req, err := def.Build(in, a.language(r, caller))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Generator.Generate(r.Context(), caller, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if !caller.IsAnonymous() {
		a.recordHistory(r.Context(), caller.UserID, def, in, res.Tagged())
	}

	out := toResultResponse(res)
	out.Module = string(def.Type)
	a.json(w, http.StatusOK, out)
}

// language prefers the stored profile preference over the negotiated locale.
func (a *App) language(r *http.Request, caller domain.Caller) domain.Language {
	if !caller.IsAnonymous() {
		p, err := a.Profiles.GetByID(r.Context(), caller.UserID)
		if err == nil && p.LanguagePreference != "" {
			return p.LanguagePreference
		}
	}
	return middleware.LocaleFromContext(r.Context())
}

func (a *App) recordHistory(ctx context.Context, userID string, def modules.Definition, in modules.Input, response string) {
	if a.History == nil {
		return
	}
	output, _ := json.Marshal(map[string]string{"response": response})
	item := domain.HistoryItem{
		UserID:     userID,
		ModuleType: def.Type,
		InputData:  def.HistoryInput(in),
		OutputData: output,
	}
	if err := a.History.Insert(ctx, item); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", userID).Str("module", string(def.Type)).Msg("history insert failed")
	}
}
