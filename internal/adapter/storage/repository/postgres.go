package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeRez0/posadmin/internal/adapter/storage"
	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var submissionColumns = []string{
	"draft_id", "idempotency_key", "attempt", "username", "outcome",
	"order_id", "order_number", "total", "detail", "attempted_at",
}

// SubmissionRepository keeps the submission journal in postgres.
type SubmissionRepository struct {
	db *storage.DB
}

var _ port.SubmissionJournal = (*SubmissionRepository)(nil)

func NewSubmissionRepository(db *storage.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Record(ctx context.Context, s *domain.Submission) error {
	var orderID *int64
	if s.OrderID != nil {
		id := int64(*s.OrderID)
		orderID = &id
	}

	statement := r.db.QueryBuilder.Insert("submissions").
		Columns(submissionColumns...).
		Values(s.DraftID, s.IdempotencyKey, s.Attempt, s.Username, string(s.Outcome),
			orderID, s.OrderNumber, s.Total, s.Detail, s.AttemptedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrConflictingData
		}
		return fmt.Errorf("error on submission insert: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) List(ctx context.Context, limit int) ([]domain.Submission, error) {
	statement := r.db.QueryBuilder.
		Select(submissionColumns...).
		From("submissions").
		OrderBy("attempted_at DESC", "id DESC").
		Limit(uint64(limit))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error on submission select: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Submission, 0)
	for rows.Next() {
		var (
			s       domain.Submission
			outcome string
			orderID *int64
		)
		err = rows.Scan(
			&s.DraftID,
			&s.IdempotencyKey,
			&s.Attempt,
			&s.Username,
			&outcome,
			&orderID,
			&s.OrderNumber,
			&s.Total,
			&s.Detail,
			&s.AttemptedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Outcome = domain.SubmissionOutcome(outcome)
		if orderID != nil {
			id := domain.OrderID(*orderID)
			s.OrderID = &id
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
