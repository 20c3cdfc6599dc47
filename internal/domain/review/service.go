package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/anishxyz/review-digest/internal/domain/page"
	apperrors "github.com/anishxyz/review-digest/pkg/errors"
)

// Service exposes review extraction with snapshot caching.
type Service interface {
	Extract(ctx context.Context, pageURL string) (Result, error)
}

// Config tunes the extraction service.
type Config struct {
	SnapshotTTL    time.Duration
	CaptureEnabled bool
}

type service struct {
	cfg       Config
	extractor Extractor
	snapshots SnapshotRepository
	captures  CaptureStore
	logger    *slog.Logger
}

// NewService is a wire provider for the review domain.
func NewService(cfg Config, extractor Extractor, snapshots SnapshotRepository, captures CaptureStore, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		extractor: extractor,
		snapshots: snapshots,
		captures:  captures,
		logger:    logger.With("component", "review.service"),
	}
}

// Extract classifies the URL, returns a cached snapshot when one exists, and
// otherwise performs a single extraction round trip. Empty and malformed
// extraction responses are treated identically and are never retried.
func (s *service) Extract(ctx context.Context, pageURL string) (Result, error) {
	info := page.Classify(pageURL)
	if info.Category == page.CategoryOther {
		return Result{}, apperrors.Wrap("invalid_input", "not a product or review page", nil)
	}

	if snapshot, ok := s.lookupSnapshot(ctx, info.ProductID); ok {
		return Result{
			ProductID: info.ProductID,
			Reviews:   snapshot.Reviews,
			Preview:   Preview(snapshot.Reviews, PreviewLimit),
			Cached:    true,
		}, nil
	}

	extraction, err := s.extractor.Extract(ctx, pageURL)
	if err != nil {
		return Result{}, apperrors.Wrap("extraction_failed", "could not retrieve reviews", err)
	}
	if len(extraction.Reviews) == 0 {
		return Result{}, apperrors.Wrap("extraction_failed", "could not retrieve reviews", nil)
	}

	s.persistSnapshot(ctx, info.ProductID, pageURL, extraction)

	return Result{
		ProductID: info.ProductID,
		Reviews:   extraction.Reviews,
		Preview:   Preview(extraction.Reviews, PreviewLimit),
	}, nil
}

func (s *service) lookupSnapshot(ctx context.Context, productID string) (Snapshot, bool) {
	snapshot, ok, err := s.snapshots.Find(ctx, productID)
	if err != nil {
		s.logger.Warn("snapshot lookup failed", "productId", productID, "error", err)
		return Snapshot{}, false
	}
	return snapshot, ok
}

// persistSnapshot is best effort: cache or archive failures never fail the
// extraction itself.
func (s *service) persistSnapshot(ctx context.Context, productID, pageURL string, extraction Extraction) {
	snapshot := Snapshot{
		ProductID:   productID,
		PageURL:     pageURL,
		Reviews:     extraction.Reviews,
		ExtractedAt: time.Now().UTC(),
	}
	if err := s.snapshots.Save(ctx, snapshot, s.cfg.SnapshotTTL); err != nil {
		s.logger.Warn("snapshot save failed", "productId", productID, "error", err)
	}
	if s.cfg.CaptureEnabled && len(extraction.RawHTML) > 0 {
		key := productID + "/" + snapshot.ExtractedAt.Format("20060102T150405Z") + ".html"
		if err := s.captures.Put(ctx, key, extraction.RawHTML); err != nil {
			s.logger.Warn("page capture failed", "productId", productID, "error", err)
		}
	}
}
