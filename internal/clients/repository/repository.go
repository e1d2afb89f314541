// Package repository persists client facts.
package repository

import (
	"context"
	"errors"

	"salonbridge_backend/internal/clients/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetFacts loads the stored facts for a client. A client the engine has
// never seen yields (nil, nil), not an error.
func (r *Repository) GetFacts(ctx context.Context, clientID int64) (*domain.ClientFacts, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT client_id, altegio_client_id,
		       consultation_date, consultation_attended,
		       paid_date, paid_attended, paid_cancelled, paid_cost_minor,
		       is_rebooking, first_paid, visits,
		       first_contact_at, stored_state, updated_at
		FROM client_facts
		WHERE client_id = $1
	`, clientID)

	var facts domain.ClientFacts
	err := row.Scan(
		&facts.ClientID, &facts.AltegioClientID,
		&facts.ConsultationDate, &facts.ConsultationAttended,
		&facts.PaidDate, &facts.PaidAttended, &facts.PaidCancelled, &facts.PaidCostMinor,
		&facts.IsRebooking, &facts.FirstPaid, &facts.Visits,
		&facts.FirstContactAt, &facts.StoredState, &facts.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &facts, nil
}

// UpsertFacts applies a field-level patch: nil patch fields keep the
// stored value (COALESCE), non-nil fields overwrite it. The visit counter
// is monotone and never moves backwards (GREATEST). Concurrent writers
// race per field, last writer wins; the engine's callers own any stricter
// per-client write discipline.
func (r *Repository) UpsertFacts(ctx context.Context, patch domain.FactsPatch) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_facts (
			client_id, altegio_client_id,
			consultation_date, consultation_attended,
			paid_date, paid_attended, paid_cancelled, paid_cost_minor,
			is_rebooking, first_paid, visits,
			first_contact_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, false), $8, COALESCE($9, false), COALESCE($10, false), COALESCE($11, 0), $12, now())
		ON CONFLICT (client_id) DO UPDATE SET
			altegio_client_id     = COALESCE($2, client_facts.altegio_client_id),
			consultation_date     = COALESCE($3, client_facts.consultation_date),
			consultation_attended = COALESCE($4, client_facts.consultation_attended),
			paid_date             = COALESCE($5, client_facts.paid_date),
			paid_attended         = COALESCE($6, client_facts.paid_attended),
			paid_cancelled        = COALESCE($7, client_facts.paid_cancelled),
			paid_cost_minor       = COALESCE($8, client_facts.paid_cost_minor),
			is_rebooking          = COALESCE($9, client_facts.is_rebooking),
			first_paid            = COALESCE($10, client_facts.first_paid),
			visits                = GREATEST(COALESCE($11, 0), client_facts.visits),
			first_contact_at      = LEAST(COALESCE($12, client_facts.first_contact_at), COALESCE(client_facts.first_contact_at, $12)),
			updated_at            = now()
	`,
		patch.ClientID, patch.AltegioClientID,
		patch.ConsultationDate, patch.ConsultationAttended,
		patch.PaidDate, patch.PaidAttended, patch.PaidCancelled, patch.PaidCostMinor,
		patch.IsRebooking, patch.FirstPaid, patch.Visits,
		patch.FirstContactAt,
	)
	return err
}

// SetStoredState records the admin's free-text fallback state.
func (r *Repository) SetStoredState(ctx context.Context, clientID int64, state string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_facts (client_id, stored_state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (client_id) DO UPDATE SET stored_state = $2, updated_at = now()
	`, clientID, state)
	return err
}
