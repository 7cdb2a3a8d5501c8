package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"notifier/internal/domain"
	"notifier/internal/infra"
	"notifier/internal/infra/geoip"
	"notifier/internal/middleware"
)

// JobService is the control surface the handlers delegate to.
type JobService interface {
	Start(ctx context.Context, sellerID string, items []domain.JobItem, paceSeconds int) (string, error)
	Pause(ctx context.Context, sellerID, jobID string) error
	Resume(ctx context.Context, sellerID, jobID string) error
	Cancel(ctx context.Context, sellerID, jobID string) error
	Status(ctx context.Context, sellerID, jobID string) (*domain.Job, error)
	List(ctx context.Context, sellerID string) ([]domain.JobSummary, error)
}

// App bundles handler dependencies.
type App struct {
	Jobs      JobService
	Templates domain.TemplateRepository
	GeoIP     geoip.CountryResolver
	Logger    infra.Logger

	// DefaultCountryCode backs the settings endpoint when no country
	// could be resolved for the request.
	DefaultCountryCode string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// domainError maps service errors onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "job not found")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "an active job already exists")
	case errors.Is(err, domain.ErrInvalidStatus):
		a.error(w, http.StatusConflict, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNoCredentials):
		a.error(w, http.StatusUnprocessableEntity, "gateway_not_configured", "configure the gateway instance and api key first")
	default:
		a.Logger.Error().Err(err).Msg("http: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentSellerID(r *http.Request) string {
	return middleware.SellerIDFromContext(r.Context())
}
