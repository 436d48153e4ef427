package repository

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackRepository struct {
	db dbtx
}

func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: pool}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO feedback (id, tenant, query, response, positive, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.Tenant, f.Query, f.Response, f.Positive, nullableString(f.Comment), f.CreatedAt,
	)
	return err
}

// ListByTenant returns a tenant's feedback, newest first
func (r *FeedbackRepository) ListByTenant(ctx context.Context, tenant domain.Tenant, limit int) ([]*domain.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, tenant, query, response, positive, comment, created_at
		 FROM feedback
		 WHERE tenant = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		tenant, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		var comment pgtype.Text
		if err := rows.Scan(&f.ID, &f.Tenant, &f.Query, &f.Response, &f.Positive, &comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			f.Comment = comment.String
		}
		results = append(results, &f)
	}
	return results, rows.Err()
}
