package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/danadoen/nusaai/internal/domain"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

var supportedLanguages = language.NewMatcher([]language.Tag{
	language.English,
	language.Indonesian,
})

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N negotiates the response language: X-Locale, then Accept-Language,
// then the client's country (ID means Bahasa Indonesia), then fallback.
func I18N(fallback domain.Language, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, fallback, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", string(locale))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback domain.Language, country string) domain.Language {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if lang, ok := domain.ParseLanguage(v); ok {
			return lang
		}
		return domain.LanguageEnglish
	}
	if lang, ok := matchAcceptLanguage(r.Header.Get("Accept-Language")); ok {
		return lang
	}
	if strings.EqualFold(country, "ID") {
		return domain.LanguageIndonesian
	}
	if country != "" {
		return domain.LanguageEnglish
	}
	if fallback != "" {
		return fallback
	}
	return domain.LanguageEnglish
}

// matchAcceptLanguage reports false when no listed language is supported.
func matchAcceptLanguage(header string) (domain.Language, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, confidence := supportedLanguages.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	if idx == 1 {
		return domain.LanguageIndonesian, true
	}
	return domain.LanguageEnglish, true
}

func LocaleFromContext(ctx context.Context) domain.Language {
	if v, ok := ctx.Value(LocaleKey).(domain.Language); ok && v != "" {
		return v
	}
	return domain.LanguageEnglish
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given request.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	for _, header := range []string{r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")} {
		if region := explicitRegion(header); region != "" {
			return region
		}
	}
	if lang, ok := domain.ParseLanguage(r.Header.Get("X-Locale")); ok && lang == domain.LanguageIndonesian {
		return "ID"
	}
	if lang, ok := matchAcceptLanguage(r.Header.Get("Accept-Language")); ok && lang == domain.LanguageIndonesian {
		return "ID"
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// explicitRegion returns the first region subtag actually written in header.
func explicitRegion(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if region, confidence := tag.Region(); confidence == language.Exact {
			return region.String()
		}
	}
	return ""
}
