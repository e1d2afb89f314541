// Package ingest provides the raw log capture bounded context.
// It appends opaque payloads from the external integrations into the
// integration log streams; interpretation is left to the reconciliation
// engine, which tolerates every historical payload shape.
package ingest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides append access to the integration log streams.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new ingest repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append stores one raw log item. The payload is stored verbatim; even
// payloads the normalizer cannot parse are kept for later replay.
func (r *Repository) Append(ctx context.Context, source string, payload []byte, receivedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO integration_log_items (source, payload, received_at)
		VALUES ($1, $2, $3)
	`, source, string(payload), receivedAt)
	return err
}
