package port

import (
	"context"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

//go:generate mockgen -source=journal.go -destination=mock/journal.go -package=mock
type SubmissionJournal interface {
	Record(ctx context.Context, s *domain.Submission) error
	// List returns the latest submissions first.
	List(ctx context.Context, limit int) ([]domain.Submission, error)
}
