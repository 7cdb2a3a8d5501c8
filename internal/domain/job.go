package domain

import "time"

// JobStatus enumerates bulk-send job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusPaused     JobStatus = "paused"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further processing can happen for the status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Active reports whether the status counts against the one-active-job-per-seller rule.
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusProcessing || s == JobStatusPaused
}

// JobItem is one customer's send unit inside a job's payload. The payload is
// snapshotted at job creation; later customer edits never reach a running job.
type JobItem struct {
	CustomerID string            `json:"customer_id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Category   string            `json:"category"`
	DueDate    time.Time         `json:"due_date"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Job is a unit of bulk notification work owned by a single seller.
//
// Counters obey success+errors == processed, and processed tracks
// CurrentIndex while the job is active. Only the runner writes counters;
// control calls touch Status alone.
type Job struct {
	ID           string
	SellerID     string
	Status       JobStatus
	Total        int
	Processed    int
	Success      int
	Errors       int
	CurrentIndex int
	PaceSeconds  int
	Items        []JobItem
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobSummary is the payload-free projection returned by list endpoints.
type JobSummary struct {
	ID           string    `json:"id"`
	Status       JobStatus `json:"status"`
	Total        int       `json:"total"`
	Processed    int       `json:"processed"`
	Success      int       `json:"success"`
	Errors       int       `json:"errors"`
	CurrentIndex int       `json:"current_index"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary strips the item payload from a job.
func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:           j.ID,
		Status:       j.Status,
		Total:        j.Total,
		Processed:    j.Processed,
		Success:      j.Success,
		Errors:       j.Errors,
		CurrentIndex: j.CurrentIndex,
		LastError:    j.LastError,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
