package reviewrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anishxyz/review-digest/internal/domain/review"
)

// PostgresRepository persists extraction snapshots using pgx.
//
// Expected schema:
//
//	CREATE TABLE review_snapshots (
//	    product_id   TEXT PRIMARY KEY,
//	    page_url     TEXT NOT NULL,
//	    reviews      JSONB NOT NULL,
//	    extracted_at TIMESTAMPTZ NOT NULL,
//	    expires_at   TIMESTAMPTZ
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Find implements review.SnapshotRepository. Expired rows are treated as
// absent; cleanup happens on the next Save.
func (r *PostgresRepository) Find(ctx context.Context, productID string) (review.Snapshot, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT product_id, page_url, reviews, extracted_at
		FROM review_snapshots
		WHERE product_id = $1
		  AND (expires_at IS NULL OR expires_at > now())
	`, productID)

	var (
		snapshot review.Snapshot
		payload  []byte
	)
	if err := row.Scan(&snapshot.ProductID, &snapshot.PageURL, &payload, &snapshot.ExtractedAt); err != nil {
		if err == pgx.ErrNoRows {
			return review.Snapshot{}, false, nil
		}
		return review.Snapshot{}, false, err
	}
	if err := json.Unmarshal(payload, &snapshot.Reviews); err != nil {
		return review.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Save implements review.SnapshotRepository.
func (r *PostgresRepository) Save(ctx context.Context, snapshot review.Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot.Reviews)
	if err != nil {
		return err
	}
	var expiresAt *time.Time
	if ttl > 0 {
		exp := snapshot.ExtractedAt.Add(ttl)
		expiresAt = &exp
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO review_snapshots (product_id, page_url, reviews, extracted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id) DO UPDATE
		SET page_url = EXCLUDED.page_url,
		    reviews = EXCLUDED.reviews,
		    extracted_at = EXCLUDED.extracted_at,
		    expires_at = EXCLUDED.expires_at
	`, snapshot.ProductID, snapshot.PageURL, payload, snapshot.ExtractedAt, expiresAt)
	return err
}

var _ review.SnapshotRepository = (*PostgresRepository)(nil)
