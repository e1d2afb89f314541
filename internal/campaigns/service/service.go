// Package service implements campaign administration and trigger routing.
package service

import (
	"context"
	"errors"
	"time"

	"salonbridge_backend/internal/campaigns/domain"
	"salonbridge_backend/internal/campaigns/repository"
	"salonbridge_backend/internal/campaigns/transport"
	"salonbridge_backend/internal/events"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the campaign persistence the service needs. Implemented by
// the campaigns repository; tests supply a synthetic collection.
type Store interface {
	List(ctx context.Context) ([]domain.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Campaign, error)
	Create(ctx context.Context, campaign domain.Campaign) error
	Update(ctx context.Context, campaign domain.Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// List returns all campaigns in creation order.
func (s *Service) List(ctx context.Context) (transport.CampaignListResponse, error) {
	campaigns, err := s.store.List(ctx)
	if err != nil {
		return transport.CampaignListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list campaigns", err)
	}

	response := transport.CampaignListResponse{
		Items: make([]transport.CampaignResponse, 0, len(campaigns)),
		Total: len(campaigns),
	}
	for _, campaign := range campaigns {
		response.Items = append(response.Items, toResponse(campaign))
	}
	return response, nil
}

// Get returns one campaign.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.CampaignResponse, error) {
	campaign, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CampaignResponse{}, apperr.NotFound("campaign not found")
	}
	if err != nil {
		return transport.CampaignResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load campaign", err)
	}
	return toResponse(campaign), nil
}

// Create persists a new campaign. The uniqueness guard runs inside this
// write path, before anything is stored.
func (s *Service) Create(ctx context.Context, req transport.CreateCampaignRequest) (transport.CampaignResponse, error) {
	campaign := fromRequest(uuid.New(), req.Name, req.BasePipelineID, req.BaseStatusID, req.V1, req.V2, req.Expire, req.Active)

	if err := s.guard(ctx, campaign, uuid.Nil); err != nil {
		return transport.CampaignResponse{}, err
	}

	if err := s.store.Create(ctx, campaign); err != nil {
		return transport.CampaignResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create campaign", err)
	}
	campaign.CreatedAt = time.Now()
	return toResponse(campaign), nil
}

// Update overwrites a campaign. The campaign being edited is excluded
// from the uniqueness check against itself.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCampaignRequest) (transport.CampaignResponse, error) {
	existing, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CampaignResponse{}, apperr.NotFound("campaign not found")
	}
	if err != nil {
		return transport.CampaignResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load campaign", err)
	}

	campaign := fromRequest(id, req.Name, req.BasePipelineID, req.BaseStatusID, req.V1, req.V2, req.Expire, req.Active)
	campaign.CreatedAt = existing.CreatedAt

	if err := s.guard(ctx, campaign, id); err != nil {
		return transport.CampaignResponse{}, err
	}

	if err := s.store.Update(ctx, campaign); err != nil {
		return transport.CampaignResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update campaign", err)
	}
	return toResponse(campaign), nil
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("campaign not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete campaign", err)
	}
	return nil
}

// guard runs the uniqueness check against the stored campaign set and
// maps a conflict to a 409 with the offending campaign in the details.
func (s *Service) guard(ctx context.Context, campaign domain.Campaign, excludeID uuid.UUID) error {
	existing, err := s.store.List(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load campaigns for uniqueness check", err)
	}

	var v1, v2 *string
	if campaign.V1 != nil {
		v1 = &campaign.V1.Value
	}
	if campaign.V2 != nil {
		v2 = &campaign.V2.Value
	}

	if conflict := domain.CheckUnique(v1, v2, excludeID, existing); conflict != nil {
		return apperr.Conflict(conflict.Reason).WithDetails(transport.ConflictDetails{
			CampaignID:   conflict.CampaignID,
			CampaignName: conflict.CampaignName,
			Slot:         conflict.Slot,
			Value:        conflict.Value,
		})
	}
	return nil
}

// HandleTrigger routes one automation trigger against the stored
// campaigns and returns the move command or a typed no-match reason.
func (s *Service) HandleTrigger(ctx context.Context, req transport.TriggerRequest) (transport.TriggerResponse, error) {
	campaigns, err := s.store.List(ctx)
	if err != nil {
		return transport.TriggerResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load campaigns", err)
	}

	result := domain.Match(domain.Trigger{
		PipelineID: req.PipelineID,
		StatusID:   req.StatusID,
		Value:      req.Value,
	}, campaigns)

	response := transport.TriggerResponse{Outcome: string(result.Outcome)}
	if result.Outcome != domain.OutcomeMatched {
		response.Reason = string(result.Outcome)
		s.log.CampaignTrigger(req.Value, string(result.Outcome), "")
		return response, nil
	}

	id := result.Campaign.ID
	response.CampaignID = &id
	response.RuleSlot = result.RuleSlot
	response.Move = &transport.MoveResponse{
		ToPipelineID: result.Rule.ToPipelineID,
		ToStatusID:   result.Rule.ToStatusID,
	}

	s.log.CampaignTrigger(req.Value, string(result.Outcome), id.String())
	if s.bus != nil {
		s.bus.Publish(ctx, events.CampaignTriggerMatched{
			BaseEvent:    events.NewBaseEvent(),
			CampaignID:   id,
			RuleSlot:     result.RuleSlot,
			Value:        req.Value,
			ToPipelineID: result.Rule.ToPipelineID,
			ToStatusID:   result.Rule.ToStatusID,
		})
	}

	return response, nil
}

func fromRequest(id uuid.UUID, name string, basePipeline, baseStatus int64, v1, v2 *transport.RuleRequest, expire *transport.ExpireRequest, active bool) domain.Campaign {
	campaign := domain.Campaign{
		ID:             id,
		Name:           name,
		BasePipelineID: basePipeline,
		BaseStatusID:   baseStatus,
		Active:         active,
	}
	if v1 != nil {
		campaign.V1 = &domain.Rule{Value: v1.Value, ToPipelineID: v1.ToPipelineID, ToStatusID: v1.ToStatusID}
	}
	if v2 != nil {
		campaign.V2 = &domain.Rule{Value: v2.Value, ToPipelineID: v2.ToPipelineID, ToStatusID: v2.ToStatusID}
	}
	if expire != nil {
		campaign.Expire = &domain.ExpireRule{Days: expire.Days, ToPipelineID: expire.ToPipelineID, ToStatusID: expire.ToStatusID}
	}
	return campaign
}

func toResponse(campaign domain.Campaign) transport.CampaignResponse {
	response := transport.CampaignResponse{
		ID:             campaign.ID,
		Name:           campaign.Name,
		BasePipelineID: campaign.BasePipelineID,
		BaseStatusID:   campaign.BaseStatusID,
		Active:         campaign.Active,
		CreatedAt:      campaign.CreatedAt.Format(time.RFC3339),
	}
	if campaign.V1 != nil {
		response.V1 = &transport.RuleResponse{Value: campaign.V1.Value, ToPipelineID: campaign.V1.ToPipelineID, ToStatusID: campaign.V1.ToStatusID}
	}
	if campaign.V2 != nil {
		response.V2 = &transport.RuleResponse{Value: campaign.V2.Value, ToPipelineID: campaign.V2.ToPipelineID, ToStatusID: campaign.V2.ToStatusID}
	}
	if campaign.Expire != nil {
		response.Expire = &transport.ExpireResponse{Days: campaign.Expire.Days, ToPipelineID: campaign.Expire.ToPipelineID, ToStatusID: campaign.Expire.ToStatusID}
	}
	return response
}
