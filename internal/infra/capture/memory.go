package capture

import (
	"context"
	"sync"

	"github.com/anishxyz/review-digest/internal/domain/review"
)

// MemoryArchive keeps page captures in memory for tests and local dev.
type MemoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryArchive constructs an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// Put implements review.CaptureStore.
func (a *MemoryArchive) Put(_ context.Context, key string, html []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored := make([]byte, len(html))
	copy(stored, html)
	a.objects[key] = stored
	return nil
}

// Get returns a stored capture, for tests.
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	html, ok := a.objects[key]
	return html, ok
}

var _ review.CaptureStore = (*MemoryArchive)(nil)
