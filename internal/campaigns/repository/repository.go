// Package repository persists campaign configuration.
package repository

import (
	"context"
	"errors"

	"salonbridge_backend/internal/campaigns/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("campaign not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `
	id, name, base_pipeline_id, base_status_id,
	v1_value, v1_to_pipeline_id, v1_to_status_id,
	v2_value, v2_to_pipeline_id, v2_to_status_id,
	expire_days, expire_to_pipeline_id, expire_to_status_id,
	active, created_at
`

// List returns all campaigns in creation order. The matcher relies on
// this order being stable.
func (r *Repository) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]domain.Campaign, 0)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return campaigns, nil
}

// GetByID returns one campaign.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1
	`, id)

	campaign, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, ErrNotFound
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

// Create persists a new campaign.
func (r *Repository) Create(ctx context.Context, campaign domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (
			id, name, base_pipeline_id, base_status_id,
			v1_value, v1_to_pipeline_id, v1_to_status_id,
			v2_value, v2_to_pipeline_id, v2_to_status_id,
			expire_days, expire_to_pipeline_id, expire_to_status_id,
			active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
	`, campaignArgs(campaign)...)
	return err
}

// Update overwrites an existing campaign.
func (r *Repository) Update(ctx context.Context, campaign domain.Campaign) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET
			name = $2, base_pipeline_id = $3, base_status_id = $4,
			v1_value = $5, v1_to_pipeline_id = $6, v1_to_status_id = $7,
			v2_value = $8, v2_to_pipeline_id = $9, v2_to_status_id = $10,
			expire_days = $11, expire_to_pipeline_id = $12, expire_to_status_id = $13,
			active = $14
		WHERE id = $1
	`, campaignArgs(campaign)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a campaign.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func campaignArgs(c domain.Campaign) []interface{} {
	var (
		v1Value, v2Value                   *string
		v1Pipeline, v1Status               *int64
		v2Pipeline, v2Status               *int64
		expireDays                         *int
		expirePipeline, expireStatus       *int64
	)
	if c.V1 != nil {
		v1Value, v1Pipeline, v1Status = &c.V1.Value, &c.V1.ToPipelineID, &c.V1.ToStatusID
	}
	if c.V2 != nil {
		v2Value, v2Pipeline, v2Status = &c.V2.Value, &c.V2.ToPipelineID, &c.V2.ToStatusID
	}
	if c.Expire != nil {
		expireDays, expirePipeline, expireStatus = &c.Expire.Days, &c.Expire.ToPipelineID, &c.Expire.ToStatusID
	}
	return []interface{}{
		c.ID, c.Name, c.BasePipelineID, c.BaseStatusID,
		v1Value, v1Pipeline, v1Status,
		v2Value, v2Pipeline, v2Status,
		expireDays, expirePipeline, expireStatus,
		c.Active,
	}
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		campaign                     domain.Campaign
		v1Value, v2Value             *string
		v1Pipeline, v1Status         *int64
		v2Pipeline, v2Status         *int64
		expireDays                   *int
		expirePipeline, expireStatus *int64
	)

	err := row.Scan(
		&campaign.ID, &campaign.Name, &campaign.BasePipelineID, &campaign.BaseStatusID,
		&v1Value, &v1Pipeline, &v1Status,
		&v2Value, &v2Pipeline, &v2Status,
		&expireDays, &expirePipeline, &expireStatus,
		&campaign.Active, &campaign.CreatedAt,
	)
	if err != nil {
		return domain.Campaign{}, err
	}

	if v1Value != nil && v1Pipeline != nil && v1Status != nil {
		campaign.V1 = &domain.Rule{Value: *v1Value, ToPipelineID: *v1Pipeline, ToStatusID: *v1Status}
	}
	if v2Value != nil && v2Pipeline != nil && v2Status != nil {
		campaign.V2 = &domain.Rule{Value: *v2Value, ToPipelineID: *v2Pipeline, ToStatusID: *v2Status}
	}
	if expireDays != nil && expirePipeline != nil && expireStatus != nil {
		campaign.Expire = &domain.ExpireRule{Days: *expireDays, ToPipelineID: *expirePipeline, ToStatusID: *expireStatus}
	}

	return campaign, nil
}
