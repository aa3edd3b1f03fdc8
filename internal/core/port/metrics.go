package port

import (
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

//go:generate mockgen -source=metrics.go -destination=mock/metrics.go -package=mock
type Metrics interface {
	RecordSubmission(outcome domain.SubmissionOutcome, elapsed time.Duration)
	SetOpenDrafts(n int)
}
