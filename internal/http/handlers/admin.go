package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/middleware"
)

// RequireAdmin only lets callers whose profile carries the admin role through.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			a.fail(w, r, domain.ErrUnauthorized)
			return
		}
		p, err := a.Profiles.GetByID(r.Context(), id.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.fail(w, r, domain.ErrForbidden)
				return
			}
			a.fail(w, r, err)
			return
		}
		if !p.IsAdmin() {
			a.Logger.Warn().Str("user_id", id.UserID).Msg("admin access denied")
			a.fail(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Profiles.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]profileResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toProfileResponse(u))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Profiles.Stats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_users": stats.TotalUsers,
		"pro_users":   stats.ProUsers,
		"admin_users": stats.AdminUsers,
		"revenue":     math.Round(stats.EstimatedMonthlyRevenue()*100) / 100,
	})
}

func (a *App) targetUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return "", false
	}
	return id, true
}

type creditsRequest struct {
	Credits *int `json:"credits"`
}

func (a *App) AdminSetCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := a.targetUserID(w, r)
	if !ok {
		return
	}
	var req creditsRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Credits == nil || *req.Credits < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "credits must be a non-negative number")
		return
	}
	p, err := a.Profiles.SetCredits(r.Context(), id, *req.Credits)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user_id", id).Int("credits", p.CreditsRemaining).Msg("credits updated")
	a.json(w, http.StatusOK, toProfileResponse(*p))
}

type subscriptionRequest struct {
	Status string `json:"status"`
}

// AdminSetSubscription switches the plan and resets the credit balance to the
// plan's allowance.
func (a *App) AdminSetSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := a.targetUserID(w, r)
	if !ok {
		return
	}
	var req subscriptionRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	status, ok := domain.ParseSubscriptionStatus(req.Status)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "status must be free or pro")
		return
	}
	p, err := a.Profiles.SetSubscription(r.Context(), id, status, domain.CreditsForStatus(status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user_id", id).Str("status", string(status)).Msg("subscription updated")
	a.json(w, http.StatusOK, toProfileResponse(*p))
}

type roleRequest struct {
	Role string `json:"role"`
}

func (a *App) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := a.targetUserID(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "role must be user or admin")
		return
	}
	p, err := a.Profiles.SetRole(r.Context(), id, role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user_id", id).Str("role", string(role)).Msg("role updated")
	a.json(w, http.StatusOK, toProfileResponse(*p))
}

func (a *App) AdminGetMasterKey(w http.ResponseWriter, r *http.Request) {
	key, err := a.Keys.MasterKey(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, maskedKey(key))
}

func (a *App) AdminPutMasterKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	value := strings.TrimSpace(req.Value)
	if err := a.Keys.SetMasterKey(r.Context(), value); err != nil {
		a.fail(w, r, err)
		return
	}
	if a.MasterCache != nil {
		a.MasterCache.Invalidate()
	}
	a.Logger.Info().Bool("configured", value != "").Msg("master api key updated")
	a.json(w, http.StatusOK, maskedKey(value))
}
