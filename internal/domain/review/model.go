package review

import (
	"context"
	"fmt"
	"time"
)

// Extraction is the raw result of one extraction round trip.
type Extraction struct {
	Reviews []string
	RawHTML []byte
}

// Extractor pulls review text out of a product page. One call is one round
// trip; callers do not retry on failure.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (Extraction, error)
}

// Snapshot is a cached extraction for a single product.
type Snapshot struct {
	ProductID   string    `json:"productId"`
	PageURL     string    `json:"pageUrl"`
	Reviews     []string  `json:"reviews"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// SnapshotRepository caches the latest extraction per product id.
type SnapshotRepository interface {
	Find(ctx context.Context, productID string) (Snapshot, bool, error)
	Save(ctx context.Context, snapshot Snapshot, ttl time.Duration) error
}

// CaptureStore archives raw page HTML for extraction debugging.
type CaptureStore interface {
	Put(ctx context.Context, key string, html []byte) error
}

// Result is what the extraction service hands back to the transport layer.
type Result struct {
	ProductID string   `json:"productId"`
	Reviews   []string `json:"reviews"`
	Preview   []string `json:"preview"`
	Cached    bool     `json:"cached"`
}

// PreviewLimit is how many reviews the popup list shows before collapsing
// the remainder into a single "and N more" entry.
const PreviewLimit = 5

// NoReviewsMessage is rendered when a page yields an empty review set.
const NoReviewsMessage = "No reviews found on this page."

// Preview returns at most limit reviews verbatim, followed by an
// "...and N more" entry when the set is larger. An empty set yields the
// no-reviews message as its only entry.
func Preview(reviews []string, limit int) []string {
	if limit <= 0 {
		limit = PreviewLimit
	}
	if len(reviews) == 0 {
		return []string{NoReviewsMessage}
	}
	if len(reviews) <= limit {
		return append([]string(nil), reviews...)
	}
	out := append([]string(nil), reviews[:limit]...)
	return append(out, fmt.Sprintf("...and %d more reviews", len(reviews)-limit))
}
