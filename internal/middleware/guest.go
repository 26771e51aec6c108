package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danadoen/nusaai/internal/domain"
)

const (
	GuestCookieName = "nusai_guest_id"
	GuestHeaderName = "X-Guest-ID"

	guestCookieMaxAge = 365 * 24 * time.Hour
)

type guestKey struct{}

// Guest gives unauthenticated requests a stable device id, read from the
// cookie or header, or freshly issued as a cookie. Clearing the cookie yields
// a new id.
func Guest(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			guestID := guestIDFromRequest(r)
			if guestID == "" {
				guestID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     GuestCookieName,
					Value:    guestID,
					Path:     "/",
					MaxAge:   int(guestCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(GuestHeaderName, guestID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), guestKey{}, guestID)))
		})
	}
}

func guestIDFromRequest(r *http.Request) string {
	candidates := []string{r.Header.Get(GuestHeaderName)}
	if c, err := r.Cookie(GuestCookieName); err == nil {
		candidates = append(candidates, c.Value)
	}
	for _, raw := range candidates {
		if parsed, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			return parsed.String()
		}
	}
	return ""
}

func GuestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(guestKey{}).(string); ok {
		return v
	}
	return ""
}

// CallerFromContext returns the identified user when authenticated, else the
// guest device.
func CallerFromContext(ctx context.Context) domain.Caller {
	if id, ok := IdentityFromContext(ctx); ok {
		return domain.Identified(id.UserID)
	}
	return domain.Anonymous(GuestIDFromContext(ctx))
}
