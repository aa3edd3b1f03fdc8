package repository

import (
	"context"
	"sync"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
)

// DefaultJournalCapacity matches the largest page ListSubmissions serves.
const DefaultJournalCapacity = 500

type journalKey struct {
	idempotencyKey string
	attempt        int
}

func keyOf(s *domain.Submission) journalKey {
	return journalKey{idempotencyKey: s.IdempotencyKey, attempt: s.Attempt}
}

// MemoryJournal is the submission journal used when no database is
// configured. It keeps the most recent entries in a ring and forgets
// everything on restart.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []domain.Submission
	next    int
	size    int
	seen    map[journalKey]struct{}
}

var _ port.SubmissionJournal = (*MemoryJournal)(nil)

func NewMemoryJournal(capacity int) *MemoryJournal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &MemoryJournal{
		entries: make([]domain.Submission, capacity),
		seen:    make(map[journalKey]struct{}, capacity),
	}
}

func (j *MemoryJournal) Record(_ context.Context, s *domain.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	key := keyOf(s)
	if _, ok := j.seen[key]; ok {
		return domain.ErrConflictingData
	}

	if j.size == len(j.entries) {
		delete(j.seen, keyOf(&j.entries[j.next]))
	} else {
		j.size++
	}
	j.entries[j.next] = *s
	j.next = (j.next + 1) % len(j.entries)
	j.seen[key] = struct{}{}
	return nil
}

func (j *MemoryJournal) List(_ context.Context, limit int) ([]domain.Submission, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := min(limit, j.size)
	result := make([]domain.Submission, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		idx := (j.next - i + len(j.entries)) % len(j.entries)
		result = append(result, j.entries[idx])
	}
	return result, nil
}
