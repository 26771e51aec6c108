package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/generation"
	"github.com/danadoen/nusaai/internal/infra"
)

const maxBodyBytes = 12 << 20

// Generator runs one request through admission, key resolution, the
// provider and usage accounting.
type Generator interface {
	Generate(ctx context.Context, caller domain.Caller, req generation.Request) (*generation.Result, error)
	Models() generation.Models
}

// KeyStore persists personal and master API keys.
type KeyStore interface {
	PersonalKey(ctx context.Context, userID string) (string, error)
	SetPersonalKey(ctx context.Context, userID, key string) error
	MasterKey(ctx context.Context) (string, error)
	SetMasterKey(ctx context.Context, key string) error
}

// CacheInvalidator drops a cached master key after it changes.
type CacheInvalidator interface {
	Invalidate()
}

type App struct {
	Logger      infra.Logger
	Profiles    domain.ProfileRepository
	History     domain.HistoryRepository
	Keys        KeyStore
	MasterCache CacheInvalidator
	Generator   Generator
	// Ready reports dependency health for /v1/healthz. Nil means always ready.
	Ready func(ctx context.Context) error
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return nil
}

// fail maps a domain error onto an HTTP error body.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		a.error(w, http.StatusPaymentRequired, "paywall_triggered", "Credits exhausted. Upgrade to Pro to continue.")
	case errors.Is(err, domain.ErrTrialExhausted):
		a.error(w, http.StatusUnauthorized, "auth_required", "Guest trial used. Please sign in to continue.")
	case errors.Is(err, domain.ErrAccountRequired):
		a.error(w, http.StatusUnauthorized, "auth_required", "Please sign in to use this feature.")
	case errors.Is(err, domain.ErrProfileMissing):
		a.error(w, http.StatusInternalServerError, "profile_missing", "Profile not found for this account.")
	case errors.Is(err, domain.ErrNoCredential):
		a.error(w, http.StatusServiceUnavailable, "no_api_key", "API Key not found. Please set a Master Key in Admin Panel or User Settings.")
	case errors.Is(err, domain.ErrInvalidCredential):
		a.error(w, http.StatusBadGateway, "invalid_api_key", "Invalid API Key. Please check settings.")
	case errors.Is(err, domain.ErrProviderFailure):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("provider call failed")
		a.error(w, http.StatusBadGateway, "provider_error", "The AI provider could not complete the request. Please try again.")
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "admin access required")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign in required")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
