package reviewrepo

import (
	"context"
	"sync"
	"time"

	"github.com/anishxyz/review-digest/internal/domain/review"
)

type entry struct {
	snapshot  review.Snapshot
	expiresAt time.Time
}

// MemoryRepository caches extraction snapshots in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]entry)}
}

// Find implements review.SnapshotRepository.
func (r *MemoryRepository) Find(_ context.Context, productID string) (review.Snapshot, bool, error) {
	r.mu.RLock()
	e, ok := r.entries[productID]
	r.mu.RUnlock()
	if !ok {
		return review.Snapshot{}, false, nil
	}
	if hasExpired(e.expiresAt) {
		r.mu.Lock()
		delete(r.entries, productID)
		r.mu.Unlock()
		return review.Snapshot{}, false, nil
	}
	return e.snapshot, true, nil
}

// Save implements review.SnapshotRepository.
func (r *MemoryRepository) Save(_ context.Context, snapshot review.Snapshot, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[snapshot.ProductID] = entry{snapshot: snapshot, expiresAt: exp}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ review.SnapshotRepository = (*MemoryRepository)(nil)
