package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/http/handlers"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/middleware"
)

// Options configures the middleware stack around the handlers.
type Options struct {
	Logger         infra.Logger
	Verifier       *middleware.TokenVerifier
	AllowedOrigins []string
	RateLimit      int
	DefaultLocale  domain.Language
	CountryLookup  middleware.CountryLookup
	SecureCookies  bool
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.RateLimit(opts.RateLimit),
			middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
			middleware.Authenticate(opts.Verifier),
			middleware.Guest(opts.SecureCookies),
		)

		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/modules", app.ListModules)
		r.Post("/v1/modules/{module}", app.RunModule)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Route("/v1/me", func(r chi.Router) {
				r.Get("/", app.Me)
				r.Patch("/", app.UpdateMe)
				r.Get("/api-key", app.GetAPIKey)
				r.Put("/api-key", app.PutAPIKey)
			})
			r.Get("/v1/history", app.ListHistory)

			r.Route("/v1/admin", func(r chi.Router) {
				r.Use(app.RequireAdmin)
				r.Get("/users", app.AdminListUsers)
				r.Get("/stats", app.AdminStats)
				r.Put("/users/{id}/credits", app.AdminSetCredits)
				r.Put("/users/{id}/subscription", app.AdminSetSubscription)
				r.Put("/users/{id}/role", app.AdminSetRole)
				r.Get("/master-key", app.AdminGetMasterKey)
				r.Put("/master-key", app.AdminPutMasterKey)
			})
		})
	})

	return r
}
