package bulk

import (
	"testing"
	"time"

	"notifier/internal/domain"
)

func TestKindForBuckets(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  time.Time
		want domain.NotificationKind
	}{
		{"yesterday is expired", now.AddDate(0, 0, -1), domain.KindExpired},
		{"today is expiring", now, domain.KindExpiring},
		{"inside window is expiring", now.AddDate(0, 0, 3), domain.KindExpiring},
		{"past window is billing", now.AddDate(0, 0, 4), domain.KindBilling},
		{"far future is billing", now.AddDate(0, 1, 0), domain.KindBilling},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindFor(now, tc.due, 3); got != tc.want {
				t.Fatalf("KindFor = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	due := time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC)
	if got := DaysUntil(now, due); got != 1 {
		t.Fatalf("DaysUntil = %d, want 1", got)
	}
}

func TestCycleDate(t *testing.T) {
	due := time.Date(2026, 9, 10, 18, 45, 12, 0, time.UTC)
	want := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if got := CycleDate(due); !got.Equal(want) {
		t.Fatalf("CycleDate = %s, want %s", got, want)
	}
}
