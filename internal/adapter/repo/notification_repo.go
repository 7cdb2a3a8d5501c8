package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"notifier/internal/domain"
)

// NotificationRepositoryPG implements domain.NotificationRepository on the
// unique (customer_id, kind, cycle_date) tracking table.
type NotificationRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{pool: pool}
}

// Record inserts the tracking row; duplicate cycle keys are expected and ignored.
func (r *NotificationRepositoryPG) Record(ctx context.Context, n domain.Notification) error {
	query := `
INSERT INTO notifications (customer_id, kind, cycle_date, sent_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (customer_id, kind, cycle_date) DO NOTHING;
`
	sentAt := n.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, query, n.CustomerID, n.Kind, n.CycleDate, sentAt)
	return err
}

// Exists reports whether the customer was already notified for the cycle.
func (r *NotificationRepositoryPG) Exists(ctx context.Context, customerID string, kind domain.NotificationKind, cycleDate time.Time) (bool, error) {
	query := `
SELECT EXISTS (
    SELECT 1 FROM notifications
    WHERE customer_id = $1 AND kind = $2 AND cycle_date = $3
);
`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID, kind, cycleDate).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
