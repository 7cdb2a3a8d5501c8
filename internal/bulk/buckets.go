package bulk

import (
	"time"

	"notifier/internal/domain"
)

// DaysUntil returns the calendar-day distance from now to the due date,
// negative when the date has passed.
func DaysUntil(now, due time.Time) int {
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n).Hours() / 24)
}

// KindFor buckets a due date into the notification kind used for template
// selection and send de-duplication.
func KindFor(now, due time.Time, expiringWindowDays int) domain.NotificationKind {
	days := DaysUntil(now, due)
	switch {
	case days < 0:
		return domain.KindExpired
	case days <= expiringWindowDays:
		return domain.KindExpiring
	default:
		return domain.KindBilling
	}
}

// CycleDate truncates a due date to the UTC day it belongs to. One
// notification per (customer, kind, cycle date) is ever recorded.
func CycleDate(due time.Time) time.Time {
	return time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
}
