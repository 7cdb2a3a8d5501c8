package bulk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"notifier/internal/domain"
	"notifier/internal/gateway"
	"notifier/internal/infra"
	"notifier/internal/infra/credentials"
)

// Sender delivers one rendered message through the gateway.
type Sender interface {
	Send(ctx context.Context, instance, apiKey, number, text string) (*gateway.Ack, error)
}

// Options tunes runner behavior. Zero values fall back to product defaults.
type Options struct {
	DefaultPaceSeconds int
	ExpiringWindowDays int
	DefaultCountryCode string
	ListLimit          int
}

// Runner owns the bulk-send job lifecycle. Control operations mutate only
// the status field; the run loop owns counters and the cursor. Per-job
// processing is strictly sequential.
type Runner struct {
	jobs      domain.JobRepository
	tracking  domain.NotificationRepository
	templates domain.TemplateRepository
	creds     *credentials.Store
	sender    Sender
	logger    infra.Logger
	opts      Options
	now       func() time.Time
}

func NewRunner(
	jobs domain.JobRepository,
	tracking domain.NotificationRepository,
	templates domain.TemplateRepository,
	creds *credentials.Store,
	sender Sender,
	logger infra.Logger,
	opts Options,
) *Runner {
	if opts.ExpiringWindowDays <= 0 {
		opts.ExpiringWindowDays = 3
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = 20
	}
	return &Runner{
		jobs:      jobs,
		tracking:  tracking,
		templates: templates,
		creds:     creds,
		sender:    sender,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Start admits a new job for the seller and launches its run loop in the
// background, returning the job id immediately. paceSeconds < 0 selects the
// configured default. A seller with a pending/processing/paused job gets
// domain.ErrConflict and no new record.
func (r *Runner) Start(ctx context.Context, sellerID string, items []domain.JobItem, paceSeconds int) (string, error) {
	if sellerID == "" {
		return "", fmt.Errorf("%w: seller id is required", domain.ErrInvalidInput)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	if paceSeconds < 0 {
		paceSeconds = r.opts.DefaultPaceSeconds
	}

	// Fail before creating anything when the seller cannot send at all.
	if _, err := r.creds.ForSeller(ctx, sellerID); err != nil {
		return "", err
	}

	if _, err := r.jobs.GetActiveBySeller(ctx, sellerID); err == nil {
		return "", domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		Status:      domain.JobStatusPending,
		Total:       len(items),
		PaceSeconds: paceSeconds,
		Items:       items,
	}
	if err := r.jobs.Create(ctx, job); err != nil {
		return "", err
	}
	if err := r.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusProcessing, nil); err != nil {
		return "", err
	}

	go r.run(job.ID)
	return job.ID, nil
}

// Pause stops the run loop before its next send. Pausing an already paused
// job is a no-op.
func (r *Runner) Pause(ctx context.Context, sellerID, jobID string) error {
	job, err := r.ownedJob(ctx, sellerID, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case domain.JobStatusPending, domain.JobStatusProcessing:
		return r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusPaused, nil)
	case domain.JobStatusPaused:
		return nil
	default:
		return fmt.Errorf("%w: cannot pause %s job", domain.ErrInvalidStatus, job.Status)
	}
}

// Resume relaunches a paused job from its persisted cursor.
func (r *Runner) Resume(ctx context.Context, sellerID, jobID string) error {
	job, err := r.ownedJob(ctx, sellerID, jobID)
	if err != nil {
		return err
	}
	if job.Status != domain.JobStatusPaused {
		return fmt.Errorf("%w: cannot resume %s job", domain.ErrInvalidStatus, job.Status)
	}
	if err := r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusProcessing, nil); err != nil {
		return err
	}
	go r.run(jobID)
	return nil
}

// Cancel ends a non-terminal job. Cancelling twice is a no-op.
func (r *Runner) Cancel(ctx context.Context, sellerID, jobID string) error {
	job, err := r.ownedJob(ctx, sellerID, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case domain.JobStatusCancelled:
		return nil
	case domain.JobStatusCompleted:
		return fmt.Errorf("%w: job already completed", domain.ErrInvalidStatus)
	default:
		return r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusCancelled, nil)
	}
}

// Status returns the seller's job including live counters.
func (r *Runner) Status(ctx context.Context, sellerID, jobID string) (*domain.Job, error) {
	return r.ownedJob(ctx, sellerID, jobID)
}

// List returns the seller's most recent jobs, newest first, without payloads.
func (r *Runner) List(ctx context.Context, sellerID string) ([]domain.JobSummary, error) {
	return r.jobs.ListRecentBySeller(ctx, sellerID, r.opts.ListLimit)
}

// RecoverStale relaunches processing jobs whose runner died with them, as
// observed by an updated_at older than the cutoff. Returns how many were
// relaunched.
func (r *Runner) RecoverStale(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := r.jobs.ClaimStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		r.logger.Info().Str("job_id", id).Msg("bulk: relaunching stale job")
		go r.run(id)
	}
	return len(ids), nil
}

func (r *Runner) ownedJob(ctx context.Context, sellerID, jobID string) (*domain.Job, error) {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.SellerID != sellerID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// run drives the job to a terminal state. It is detached from the
// triggering request; cancellation is cooperative through the stored status.
func (r *Runner) run(jobID string) {
	ctx := context.Background()
	logger := r.logger.With().Str("job_id", jobID).Logger()

	if err := r.process(ctx, jobID, logger); err != nil {
		// Fail closed: never leave a job silently stuck in processing.
		msg := err.Error()
		logger.Error().Err(err).Msg("bulk: job failed")
		if uerr := r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusCancelled, &msg); uerr != nil {
			logger.Error().Err(uerr).Msg("bulk: failed to record job failure")
		}
	}
}

func (r *Runner) process(ctx context.Context, jobID string, logger infra.Logger) error {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	creds, err := r.creds.ForSeller(ctx, job.SellerID)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	countryCode := creds.CountryCode
	if countryCode == "" {
		countryCode = r.opts.DefaultCountryCode
	}

	processed, success, errCount := job.Processed, job.Success, job.Errors

	for i := job.CurrentIndex; i < job.Total; i++ {
		// An external pause/cancel takes effect before the next send,
		// never mid-send.
		current, err := r.jobs.GetByID(ctx, jobID)
		if err != nil {
			return fmt.Errorf("refresh status: %w", err)
		}
		if current.Status != domain.JobStatusProcessing {
			logger.Info().
				Str("status", string(current.Status)).
				Int("index", i).
				Msg("bulk: run loop stopped")
			return nil
		}

		item := job.Items[i]
		if r.sendItem(ctx, job.SellerID, creds, countryCode, item, logger) {
			success++
		} else {
			errCount++
		}
		processed++

		// Durability point: a crash between items loses at most the
		// in-flight item's result.
		if err := r.jobs.UpdateProgress(ctx, jobID, processed, success, errCount, i+1); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}

		if i < job.Total-1 && job.PaceSeconds > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(job.PaceSeconds) * time.Second):
			}
		}
	}

	if err := r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusCompleted, nil); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	logger.Info().
		Int("success", success).
		Int("errors", errCount).
		Msg("bulk: job completed")
	return nil
}

// sendItem processes one customer and reports success. Per-item failures
// are absorbed here; only store errors abort the job.
func (r *Runner) sendItem(ctx context.Context, sellerID string, creds credentials.Credentials, countryCode string, item domain.JobItem, logger infra.Logger) bool {
	now := r.now()
	kind := KindFor(now, item.DueDate, r.opts.ExpiringWindowDays)

	tpl, err := r.templates.Find(ctx, sellerID, kind, item.Category)
	if err != nil {
		logger.Warn().
			Str("customer_id", item.CustomerID).
			Str("kind", string(kind)).
			Str("category", item.Category).
			Msg("bulk: no template for item")
		return false
	}

	number := gateway.NormalizePhone(item.Phone, countryCode)
	if number == "" {
		logger.Warn().Str("customer_id", item.CustomerID).Msg("bulk: item has no usable phone")
		return false
	}

	text := Render(tpl.Body, renderFields(item, now, creds.Locale))
	ack, err := r.sender.Send(ctx, creds.Instance, creds.APIKey, number, text)
	if err != nil {
		logger.Warn().Err(err).Str("customer_id", item.CustomerID).Msg("bulk: send failed")
		return false
	}

	tracking := domain.Notification{
		CustomerID: item.CustomerID,
		Kind:       kind,
		CycleDate:  CycleDate(item.DueDate),
		SentAt:     now,
	}
	if err := r.tracking.Record(ctx, tracking); err != nil {
		// Duplicate keys are absorbed by the repository; anything else is
		// logged but never fails a delivered message.
		logger.Warn().Err(err).Str("customer_id", item.CustomerID).Msg("bulk: tracking insert failed")
	}

	logger.Debug().
		Str("customer_id", item.CustomerID).
		Str("message_id", ack.MessageID).
		Msg("bulk: message sent")
	return true
}

func renderFields(item domain.JobItem, now time.Time, locale string) map[string]string {
	fields := make(map[string]string, len(item.Fields)+4)
	for k, v := range item.Fields {
		fields[k] = v
	}
	fields["name"] = DisplayName(item.Name, locale)
	fields["phone"] = item.Phone
	fields["category"] = item.Category
	if !item.DueDate.IsZero() {
		fields["due_date"] = item.DueDate.Format("02/01/2006")
		days := DaysUntil(now, item.DueDate)
		if days < 0 {
			days = -days
		}
		fields["days"] = strconv.Itoa(days)
	}
	return fields
}
