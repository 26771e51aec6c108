package handlers

import (
	"net/http"
	"strings"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra/credentials"
	"github.com/danadoen/nusaai/internal/middleware"
)

type keyRequest struct {
	Value string `json:"value"`
}

type keyResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

func maskedKey(key string) keyResponse {
	key = strings.TrimSpace(key)
	if key == "" {
		return keyResponse{}
	}
	return keyResponse{Configured: true, Masked: credentials.Mask(key)}
}

func (a *App) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	key, err := a.Keys.PersonalKey(r.Context(), id.UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, maskedKey(key))
}

// PutAPIKey stores the caller's personal key. An empty value clears it.
func (a *App) PutAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	var req keyRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err := a.ensureProfile(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	value := strings.TrimSpace(req.Value)
	if err := a.Keys.SetPersonalKey(r.Context(), id.UserID, value); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user_id", id.UserID).Bool("configured", value != "").Msg("personal api key updated")
	a.json(w, http.StatusOK, maskedKey(value))
}
