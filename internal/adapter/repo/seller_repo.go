package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifier/internal/domain"
)

// SellerRepositoryPG implements domain.SellerRepository.
type SellerRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewSellerRepository(pool *pgxpool.Pool) *SellerRepositoryPG {
	return &SellerRepositoryPG{pool: pool}
}

// GetByID fetches a tenant record including gateway credentials.
func (r *SellerRepositoryPG) GetByID(ctx context.Context, sellerID string) (*domain.Seller, error) {
	query := `
SELECT id, name, COALESCE(locale, ''), COALESCE(country_code, ''), COALESCE(gateway_instance, ''), COALESCE(gateway_api_key, ''), COALESCE(pace_seconds, 0), created_at, updated_at
FROM sellers
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, sellerID)
	var s domain.Seller
	if err := row.Scan(&s.ID, &s.Name, &s.Locale, &s.CountryCode, &s.GatewayInstance, &s.GatewayAPIKey, &s.PaceSeconds, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
