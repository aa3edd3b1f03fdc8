package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type SubmissionOutcome string

const (
	SubmissionConfirmed SubmissionOutcome = "confirmed"
	SubmissionRejected  SubmissionOutcome = "rejected"
	SubmissionFailed    SubmissionOutcome = "failed"
)

// Submission is one attempt to hand a draft to the order sink.
type Submission struct {
	DraftID        string
	IdempotencyKey string
	Attempt        int
	Username       string
	Outcome        SubmissionOutcome
	OrderID        *OrderID
	OrderNumber    string
	Total          decimal.Decimal
	Detail         string
	AttemptedAt    time.Time
}
