package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifier/internal/domain"
)

// CustomerRepositoryPG implements domain.CustomerRepository.
type CustomerRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepositoryPG {
	return &CustomerRepositoryPG{pool: pool}
}

// ListDue returns active customers expired or due within the window,
// oldest due date first so the most urgent reminders go out first.
func (r *CustomerRepositoryPG) ListDue(ctx context.Context, now time.Time, window time.Duration) ([]domain.Customer, error) {
	query := `
SELECT id, seller_id, name, phone, category, plan, amount, due_date, active, created_at, updated_at
FROM customers
WHERE active = TRUE AND due_date <= $1
ORDER BY due_date ASC;
`
	rows, err := r.pool.Query(ctx, query, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.SellerID, &c.Name, &c.Phone, &c.Category, &c.Plan, &c.Amount, &c.DueDate, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one customer.
func (r *CustomerRepositoryPG) GetByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `
SELECT id, seller_id, name, phone, category, plan, amount, due_date, active, created_at, updated_at
FROM customers
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, customerID)
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.SellerID, &c.Name, &c.Phone, &c.Category, &c.Plan, &c.Amount, &c.DueDate, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
