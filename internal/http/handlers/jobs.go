package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"notifier/internal/domain"
)

type jobItemRequest struct {
	CustomerID string            `json:"customer_id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Category   string            `json:"category"`
	DueDate    time.Time         `json:"due_date"`
	Fields     map[string]string `json:"fields"`
}

type startJobRequest struct {
	Items       []jobItemRequest `json:"items"`
	PaceSeconds *int             `json:"pace_seconds"`
}

type startJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// JobsStart validates the batch and admits it; the send loop runs in the
// background and the caller polls status.
func (a *App) JobsStart(w http.ResponseWriter, r *http.Request) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Items) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "items are required")
		return
	}
	items := make([]domain.JobItem, 0, len(req.Items))
	for _, item := range req.Items {
		if strings.TrimSpace(item.CustomerID) == "" || strings.TrimSpace(item.Phone) == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "each item needs customer_id and phone")
			return
		}
		items = append(items, domain.JobItem{
			CustomerID: item.CustomerID,
			Name:       item.Name,
			Phone:      item.Phone,
			Category:   item.Category,
			DueDate:    item.DueDate,
			Fields:     item.Fields,
		})
	}
	pace := -1
	if req.PaceSeconds != nil {
		if *req.PaceSeconds < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "pace_seconds must be non-negative")
			return
		}
		pace = *req.PaceSeconds
	}

	jobID, err := a.Jobs.Start(r.Context(), sellerID, items, pace)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, startJobResponse{
		JobID:  jobID,
		Status: string(domain.JobStatusProcessing),
		Total:  len(items),
	})
}

// JobsStatus returns the live counters for one job.
func (a *App) JobsStatus(w http.ResponseWriter, r *http.Request) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Jobs.Status(r.Context(), sellerID, jobID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, job.Summary())
}

// JobsList returns the seller's recent jobs without payloads.
func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	jobs, err := a.Jobs.List(r.Context(), sellerID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.JobSummary{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": jobs})
}

func (a *App) JobsPause(w http.ResponseWriter, r *http.Request) {
	a.jobControl(w, r, a.Jobs.Pause, domain.JobStatusPaused)
}

func (a *App) JobsResume(w http.ResponseWriter, r *http.Request) {
	a.jobControl(w, r, a.Jobs.Resume, domain.JobStatusProcessing)
}

func (a *App) JobsCancel(w http.ResponseWriter, r *http.Request) {
	a.jobControl(w, r, a.Jobs.Cancel, domain.JobStatusCancelled)
}

func (a *App) jobControl(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sellerID, jobID string) error, result domain.JobStatus) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if err := op(r.Context(), sellerID, jobID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"job_id": jobID, "status": string(result)})
}
