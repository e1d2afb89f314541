// Package repository provides read access to the integration log streams
// for the reconciliation engine.
package repository

import (
	"context"
	"time"

	"salonbridge_backend/internal/reconcile"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecentItems returns every raw log item received since the cutoff, both
// streams interleaved, oldest first. Payloads are returned opaque; the
// engine's normalizer deals with the historical shape drift.
func (r *Repository) RecentItems(ctx context.Context, since time.Time) ([]reconcile.RawItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT source, payload, received_at
		FROM integration_log_items
		WHERE received_at >= $1
		ORDER BY received_at ASC, id ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]reconcile.RawItem, 0)
	for rows.Next() {
		var (
			source     string
			payload    string
			receivedAt time.Time
		)
		if err := rows.Scan(&source, &payload, &receivedAt); err != nil {
			return nil, err
		}
		items = append(items, reconcile.RawItem{
			Source:     reconcile.Source(source),
			ReceivedAt: receivedAt,
			Payload:    payload,
		})
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
