package service

import (
	"sync"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

const DefaultDraftTTL = 2 * time.Hour

type draftEntry struct {
	owner   string
	builder *OrderBuilder
}

// DraftRegistry keeps the live drafts of all sessions. A draft is visible
// only to the user who created it. Confirmed drafts stay until they expire
// so a repeated submit can be answered with the stored order.
type DraftRegistry struct {
	mu       sync.Mutex
	drafts   map[string]draftEntry
	ttl      time.Duration
	now      func() time.Time
	onChange func(open int)
}

// NewDraftRegistry creates a registry. onChange, when set, receives the
// number of open drafts after every change to that number.
func NewDraftRegistry(ttl time.Duration, onChange func(open int)) *DraftRegistry {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftRegistry{
		drafts:   make(map[string]draftEntry),
		ttl:      ttl,
		now:      time.Now,
		onChange: onChange,
	}
}

func (r *DraftRegistry) Add(owner string, b *OrderBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	r.drafts[b.ID()] = draftEntry{owner: owner, builder: b}
	r.notifyLocked()
}

func (r *DraftRegistry) Get(owner string, id string) (*OrderBuilder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sweepLocked() {
		r.notifyLocked()
	}
	e, ok := r.drafts[id]
	if !ok || e.owner != owner {
		return nil, domain.ErrDataNotFound
	}
	return e.builder, nil
}

func (r *DraftRegistry) Remove(owner string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.drafts[id]
	if !ok || e.owner != owner {
		return domain.ErrDataNotFound
	}
	delete(r.drafts, id)
	r.notifyLocked()
	return nil
}

// Settled reports that a draft left the open state without leaving the
// registry.
func (r *DraftRegistry) Settled() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifyLocked()
}

func (r *DraftRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.drafts)
}

// Open counts the drafts that have not been confirmed yet.
func (r *DraftRegistry) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.openLocked()
}

func (r *DraftRegistry) openLocked() int {
	n := 0
	for _, e := range r.drafts {
		if e.builder.open() {
			n++
		}
	}
	return n
}

func (r *DraftRegistry) notifyLocked() {
	if r.onChange != nil {
		r.onChange(r.openLocked())
	}
}

// sweepLocked evicts expired drafts and reports whether any were evicted.
func (r *DraftRegistry) sweepLocked() bool {
	deadline := r.now().Add(-r.ttl)
	evicted := false
	for id, e := range r.drafts {
		touched, evictable := e.builder.idleSince()
		if evictable && touched.Before(deadline) {
			delete(r.drafts, id)
			evicted = true
		}
	}
	return evicted
}
