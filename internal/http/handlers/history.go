package handlers

import (
	"net/http"
	"strconv"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/middleware"
)

const (
	defaultHistoryLimit = 5
	maxHistoryLimit     = 50
)

func historyLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	if n > maxHistoryLimit {
		return maxHistoryLimit
	}
	return n
}

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	items, err := a.History.ListRecent(r.Context(), id.UserID, historyLimit(r.URL.Query().Get("limit")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
