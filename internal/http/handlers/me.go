package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/middleware"
)

type profileResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	Role               string    `json:"role"`
	LanguagePreference string    `json:"language_preference"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreditsRemaining   int       `json:"credits_remaining"`
	Unlimited          bool      `json:"unlimited"`
	CreatedAt          time.Time `json:"created_at"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		FullName:           p.FullName,
		AvatarURL:          p.AvatarURL,
		Role:               string(p.Role),
		LanguagePreference: string(p.LanguagePreference),
		SubscriptionStatus: string(p.SubscriptionStatus),
		CreditsRemaining:   p.CreditsRemaining,
		Unlimited:          p.Unlimited(),
		CreatedAt:          p.CreatedAt,
	}
}

// ensureProfile loads the caller's profile, creating it with sign-up defaults
// on first sight.
func (a *App) ensureProfile(ctx context.Context, id middleware.Identity) (*domain.Profile, error) {
	p, err := a.Profiles.GetByID(ctx, id.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	fresh := domain.NewProfile(id.UserID, id.Email, id.FullName)
	fresh.AvatarURL = id.AvatarURL
	created, err := a.Profiles.Create(ctx, fresh)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().Str("user_id", id.UserID).Msg("profile created")
	return created, nil
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	p, err := a.ensureProfile(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileResponse(*p))
}

type updateMeRequest struct {
	FullName           *string `json:"full_name"`
	LanguagePreference *string `json:"language_preference"`
}

func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	var req updateMeRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	current, err := a.ensureProfile(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	fullName := current.FullName
	if req.FullName != nil {
		fullName = strings.TrimSpace(*req.FullName)
		if fullName == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "full_name must not be empty")
			return
		}
	}
	lang := current.LanguagePreference
	if req.LanguagePreference != nil {
		parsed, ok := domain.ParseLanguage(*req.LanguagePreference)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "language_preference must be en or id")
			return
		}
		lang = parsed
	}

	updated, err := a.Profiles.UpdateDetails(r.Context(), id.UserID, fullName, lang)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileResponse(*updated))
}
