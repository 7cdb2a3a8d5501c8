package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"notifier/internal/domain"
	"notifier/internal/middleware"
)

type fakeJobService struct {
	startSeller string
	startItems  []domain.JobItem
	startPace   int
	startID     string
	startErr    error

	controlSeller string
	controlJob    string
	controlErr    error

	statusJob *domain.Job
	statusErr error

	listJobs []domain.JobSummary
	listErr  error
}

func (f *fakeJobService) Start(_ context.Context, sellerID string, items []domain.JobItem, pace int) (string, error) {
	f.startSeller, f.startItems, f.startPace = sellerID, items, pace
	return f.startID, f.startErr
}

func (f *fakeJobService) Pause(_ context.Context, sellerID, jobID string) error {
	f.controlSeller, f.controlJob = sellerID, jobID
	return f.controlErr
}

func (f *fakeJobService) Resume(_ context.Context, sellerID, jobID string) error {
	f.controlSeller, f.controlJob = sellerID, jobID
	return f.controlErr
}

func (f *fakeJobService) Cancel(_ context.Context, sellerID, jobID string) error {
	f.controlSeller, f.controlJob = sellerID, jobID
	return f.controlErr
}

func (f *fakeJobService) Status(_ context.Context, sellerID, jobID string) (*domain.Job, error) {
	f.controlSeller, f.controlJob = sellerID, jobID
	return f.statusJob, f.statusErr
}

func (f *fakeJobService) List(_ context.Context, sellerID string) ([]domain.JobSummary, error) {
	f.controlSeller = sellerID
	return f.listJobs, f.listErr
}

func testApp(svc *fakeJobService) (*App, chi.Router) {
	app := &App{Jobs: svc, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Post("/v1/jobs", app.JobsStart)
	r.Get("/v1/jobs", app.JobsList)
	r.Get("/v1/jobs/{job_id}", app.JobsStatus)
	r.Post("/v1/jobs/{job_id}/pause", app.JobsPause)
	r.Post("/v1/jobs/{job_id}/resume", app.JobsResume)
	r.Post("/v1/jobs/{job_id}/cancel", app.JobsCancel)
	return app, r
}

func doRequest(t *testing.T, r chi.Router, method, path, sellerID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if sellerID != "" {
		req = req.WithContext(middleware.ContextWithSellerID(req.Context(), sellerID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJobsStartAccepted(t *testing.T) {
	svc := &fakeJobService{startID: "job-1"}
	_, r := testApp(svc)

	body := `{"items":[{"customer_id":"c1","name":"Ana","phone":"11987654321","category":"fiber"}]}`
	rec := doRequest(t, r, http.MethodPost, "/v1/jobs", "seller-1", body)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	var resp startJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != "job-1" || resp.Total != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if svc.startSeller != "seller-1" {
		t.Fatalf("seller passed to service = %q", svc.startSeller)
	}
	if svc.startPace != -1 {
		t.Fatalf("omitted pace should delegate as -1, got %d", svc.startPace)
	}
}

func TestJobsStartExplicitPace(t *testing.T) {
	svc := &fakeJobService{startID: "job-1"}
	_, r := testApp(svc)

	body := `{"items":[{"customer_id":"c1","phone":"11987654321"}],"pace_seconds":0}`
	rec := doRequest(t, r, http.MethodPost, "/v1/jobs", "seller-1", body)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.startPace != 0 {
		t.Fatalf("pace = %d, want 0", svc.startPace)
	}
}

func TestJobsStartValidation(t *testing.T) {
	svc := &fakeJobService{}
	_, r := testApp(svc)

	cases := []struct {
		name string
		body string
	}{
		{"no items", `{"items":[]}`},
		{"missing phone", `{"items":[{"customer_id":"c1"}]}`},
		{"negative pace", `{"items":[{"customer_id":"c1","phone":"11987654321"}],"pace_seconds":-5}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodPost, "/v1/jobs", "seller-1", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			if svc.startSeller != "" {
				t.Fatal("service should not be called on invalid input")
			}
		})
	}
}

func TestJobsStartConflict(t *testing.T) {
	svc := &fakeJobService{startErr: domain.ErrConflict}
	_, r := testApp(svc)

	body := `{"items":[{"customer_id":"c1","phone":"11987654321"}]}`
	rec := doRequest(t, r, http.MethodPost, "/v1/jobs", "seller-1", body)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestJobsRequireSeller(t *testing.T) {
	svc := &fakeJobService{}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodGet, "/v1/jobs", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJobsStatus(t *testing.T) {
	job := &domain.Job{ID: "job-1", Status: domain.JobStatusProcessing, Total: 10, Processed: 4, Success: 3, Errors: 1, CurrentIndex: 4}
	svc := &fakeJobService{statusJob: job}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodGet, "/v1/jobs/job-1", "seller-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp domain.JobSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "job-1" || resp.Processed != 4 || resp.Errors != 1 {
		t.Fatalf("summary = %+v", resp)
	}
	if svc.controlJob != "job-1" {
		t.Fatalf("job id passed to service = %q", svc.controlJob)
	}
}

func TestJobsStatusNotFound(t *testing.T) {
	svc := &fakeJobService{statusErr: domain.ErrNotFound}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodGet, "/v1/jobs/missing", "seller-1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJobsPause(t *testing.T) {
	svc := &fakeJobService{}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodPost, "/v1/jobs/job-1/pause", "seller-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != string(domain.JobStatusPaused) {
		t.Fatalf("status in body = %q", resp["status"])
	}
	if svc.controlSeller != "seller-1" || svc.controlJob != "job-1" {
		t.Fatalf("service got seller=%q job=%q", svc.controlSeller, svc.controlJob)
	}
}

func TestJobsResumeInvalidStatus(t *testing.T) {
	svc := &fakeJobService{controlErr: domain.ErrInvalidStatus}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodPost, "/v1/jobs/job-1/resume", "seller-1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestJobsCancelForeignJob(t *testing.T) {
	svc := &fakeJobService{controlErr: domain.ErrNotFound}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodPost, "/v1/jobs/job-1/cancel", "seller-1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJobsListWrapsItems(t *testing.T) {
	svc := &fakeJobService{listJobs: []domain.JobSummary{{ID: "job-1"}, {ID: "job-2"}}}
	_, r := testApp(svc)

	rec := doRequest(t, r, http.MethodGet, "/v1/jobs", "seller-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Items []domain.JobSummary `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].ID != "job-1" {
		t.Fatalf("items = %+v", resp.Items)
	}
}
