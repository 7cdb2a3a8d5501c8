package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"notifier/internal/http/handlers"
	"notifier/internal/infra"
	"notifier/internal/middleware"
)

// NewRouter assembles the control API. Everything under /v1 except the
// health check requires a seller token.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	var lookup middleware.CountryLookup
	if app.GeoIP != nil {
		lookup = app.GeoIP.CountryCode
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		middleware.Locale(cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SellerAuth(cfg.JWTSecret))

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Post("/", app.JobsStart)
			r.Get("/", app.JobsList)
			r.Get("/{job_id}", app.JobsStatus)
			r.Post("/{job_id}/pause", app.JobsPause)
			r.Post("/{job_id}/resume", app.JobsResume)
			r.Post("/{job_id}/cancel", app.JobsCancel)
		})

		r.Route("/v1/templates", func(r chi.Router) {
			r.Get("/", app.TemplatesList)
			r.Put("/", app.TemplatesUpsert)
		})

		r.Get("/v1/settings/defaults", app.SettingsDefaults)
	})

	return r
}
