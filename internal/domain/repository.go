package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for bulk-send jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// GetActiveBySeller returns the seller's pending/processing/paused job,
	// or ErrNotFound when none exists.
	GetActiveBySeller(ctx context.Context, sellerID string) (*Job, error)
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, lastError *string) error
	UpdateProgress(ctx context.Context, jobID string, processed, success, errors, currentIndex int) error
	ListRecentBySeller(ctx context.Context, sellerID string, limit int) ([]JobSummary, error)
	// ClaimStale re-touches processing jobs not updated since the cutoff and
	// returns their ids, so a recovery worker can relaunch them exactly once.
	ClaimStale(ctx context.Context, cutoff time.Time) ([]string, error)
}

// NotificationRepository is the append-only send-tracking store.
type NotificationRepository interface {
	// Record inserts the tracking row; a duplicate key is not an error.
	Record(ctx context.Context, n Notification) error
	Exists(ctx context.Context, customerID string, kind NotificationKind, cycleDate time.Time) (bool, error)
}

// TemplateRepository resolves seller message templates.
type TemplateRepository interface {
	// Find returns the template for (seller, kind, category), falling back
	// to the seller's category-agnostic template. ErrNotFound when neither exists.
	Find(ctx context.Context, sellerID string, kind NotificationKind, category string) (*MessageTemplate, error)
	ListBySeller(ctx context.Context, sellerID string) ([]MessageTemplate, error)
	Upsert(ctx context.Context, tpl *MessageTemplate) error
}

// CustomerRepository exposes the read paths the reminder sweep needs.
type CustomerRepository interface {
	// ListDue returns active customers whose due date falls on or before
	// now+window (expired ones included), across all sellers.
	ListDue(ctx context.Context, now time.Time, window time.Duration) ([]Customer, error)
	GetByID(ctx context.Context, customerID string) (*Customer, error)
}

// SellerRepository reads tenant records.
type SellerRepository interface {
	GetByID(ctx context.Context, sellerID string) (*Seller, error)
}
