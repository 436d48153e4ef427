package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordRepository stores customer action records, one table per record kind
type RecordRepository struct {
	db dbtx
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: pool}
}

func NewRecordRepositoryWithTx(tx pgx.Tx) *RecordRepository {
	return &RecordRepository{db: tx}
}

// Append inserts rec into the table for its kind. Records are never updated.
func (r *RecordRepository) Append(ctx context.Context, rec *domain.ActionRecord) error {
	var err error
	switch rec.Kind {
	case domain.RecordKindNewOrder:
		_, err = r.db.Exec(ctx,
			`INSERT INTO new_orders (id, user_name, order_details, address, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.UserName, rec.OrderDetails, nullableString(rec.Address), rec.CreatedAt,
		)
	case domain.RecordKindReturnRequest:
		_, err = r.db.Exec(ctx,
			`INSERT INTO return_requests (id, user_name, order_number, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.UserName, rec.OrderNumber, rec.Reason, rec.CreatedAt,
		)
	case domain.RecordKindIssue:
		_, err = r.db.Exec(ctx,
			`INSERT INTO issues (id, user_name, issue_description, created_at)
			 VALUES ($1, $2, $3, $4)`,
			rec.ID, rec.UserName, rec.IssueDescription, rec.CreatedAt,
		)
	case domain.RecordKindCallback:
		_, err = r.db.Exec(ctx,
			`INSERT INTO callback_requests (id, user_name, phone_number, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.UserName, rec.PhoneNumber, rec.CallbackReason, rec.CreatedAt,
		)
	case domain.RecordKindTrackOrder:
		_, err = r.db.Exec(ctx,
			`INSERT INTO track_requests (id, user_name, order_number, created_at)
			 VALUES ($1, $2, $3, $4)`,
			rec.ID, rec.UserName, rec.OrderNumber, rec.CreatedAt,
		)
	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidRecordKind, rec.Kind)
	}
	return err
}

// List returns every record of a kind, newest first
func (r *RecordRepository) List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error) {
	var query string
	switch kind {
	case domain.RecordKindNewOrder:
		query = `SELECT id, user_name, created_at, order_details, address FROM new_orders ORDER BY created_at DESC, id`
	case domain.RecordKindReturnRequest:
		query = `SELECT id, user_name, created_at, order_number, reason FROM return_requests ORDER BY created_at DESC, id`
	case domain.RecordKindIssue:
		query = `SELECT id, user_name, created_at, issue_description FROM issues ORDER BY created_at DESC, id`
	case domain.RecordKindCallback:
		query = `SELECT id, user_name, created_at, phone_number, reason FROM callback_requests ORDER BY created_at DESC, id`
	case domain.RecordKindTrackOrder:
		query = `SELECT id, user_name, created_at, order_number FROM track_requests ORDER BY created_at DESC, id`
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRecordKind, kind)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ActionRecord
	for rows.Next() {
		rec := &domain.ActionRecord{Kind: kind}
		var address pgtype.Text
		if err := rows.Scan(scanTargets(rec, &address)...); err != nil {
			return nil, err
		}
		if address.Valid {
			rec.Address = address.String
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanTargets(rec *domain.ActionRecord, address *pgtype.Text) []any {
	targets := []any{&rec.ID, &rec.UserName, &rec.CreatedAt}
	switch rec.Kind {
	case domain.RecordKindNewOrder:
		targets = append(targets, &rec.OrderDetails, address)
	case domain.RecordKindReturnRequest:
		targets = append(targets, &rec.OrderNumber, &rec.Reason)
	case domain.RecordKindIssue:
		targets = append(targets, &rec.IssueDescription)
	case domain.RecordKindCallback:
		targets = append(targets, &rec.PhoneNumber, &rec.CallbackReason)
	case domain.RecordKindTrackOrder:
		targets = append(targets, &rec.OrderNumber)
	}
	return targets
}
