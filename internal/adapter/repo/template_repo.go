package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifier/internal/domain"
)

// TemplateRepositoryPG implements domain.TemplateRepository.
type TemplateRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{pool: pool}
}

// Find resolves the template for (seller, kind, category), preferring an
// exact category match over the seller's category-agnostic template.
func (r *TemplateRepositoryPG) Find(ctx context.Context, sellerID string, kind domain.NotificationKind, category string) (*domain.MessageTemplate, error) {
	query := `
SELECT id, seller_id, kind, category, body, created_at, updated_at
FROM message_templates
WHERE seller_id = $1 AND kind = $2 AND category IN ($3, '')
ORDER BY category DESC
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, query, sellerID, kind, category)
	var tpl domain.MessageTemplate
	if err := row.Scan(&tpl.ID, &tpl.SellerID, &tpl.Kind, &tpl.Category, &tpl.Body, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// ListBySeller returns all the seller's templates.
func (r *TemplateRepositoryPG) ListBySeller(ctx context.Context, sellerID string) ([]domain.MessageTemplate, error) {
	query := `
SELECT id, seller_id, kind, category, body, created_at, updated_at
FROM message_templates
WHERE seller_id = $1
ORDER BY kind, category;
`
	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MessageTemplate
	for rows.Next() {
		var tpl domain.MessageTemplate
		if err := rows.Scan(&tpl.ID, &tpl.SellerID, &tpl.Kind, &tpl.Category, &tpl.Body, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

// Upsert writes a seller template for a (kind, category) slot.
func (r *TemplateRepositoryPG) Upsert(ctx context.Context, tpl *domain.MessageTemplate) error {
	query := `
INSERT INTO message_templates (id, seller_id, kind, category, body)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (seller_id, kind, category)
DO UPDATE SET body = EXCLUDED.body, updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, query, tpl.ID, tpl.SellerID, tpl.Kind, tpl.Category, tpl.Body)
	return err
}
