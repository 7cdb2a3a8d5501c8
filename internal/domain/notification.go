package domain

import "time"

// NotificationKind buckets a customer by distance to the cycle date.
type NotificationKind string

const (
	KindExpired  NotificationKind = "expired"
	KindExpiring NotificationKind = "expiring"
	KindBilling  NotificationKind = "billing"
)

// Notification records one delivered message for de-duplication within a
// billing cycle. The (customer, kind, cycle date) key is unique; inserting a
// duplicate is expected and ignored by the repository.
type Notification struct {
	CustomerID string
	Kind       NotificationKind
	CycleDate  time.Time
	SentAt     time.Time
}
