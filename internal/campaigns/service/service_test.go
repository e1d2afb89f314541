package service

import (
	"context"
	"errors"
	"testing"

	"salonbridge_backend/internal/campaigns/domain"
	"salonbridge_backend/internal/campaigns/repository"
	"salonbridge_backend/internal/campaigns/transport"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	campaigns []domain.Campaign
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Campaign, error) {
	return append([]domain.Campaign(nil), f.campaigns...), nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Campaign, error) {
	for _, c := range f.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Campaign{}, repository.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, campaign domain.Campaign) error {
	f.campaigns = append(f.campaigns, campaign)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, campaign domain.Campaign) error {
	for i, c := range f.campaigns {
		if c.ID == campaign.ID {
			f.campaigns[i] = campaign
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	for i, c := range f.campaigns {
		if c.ID == id {
			f.campaigns = append(f.campaigns[:i], f.campaigns[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func newTestService(store Store) *Service {
	return New(store, nil, logger.New("development"))
}

func createRequest(name, v1 string) transport.CreateCampaignRequest {
	req := transport.CreateCampaignRequest{
		Name:           name,
		BasePipelineID: 10,
		BaseStatusID:   20,
		Active:         true,
	}
	if v1 != "" {
		req.V1 = &transport.RuleRequest{Value: v1, ToPipelineID: 11, ToStatusID: 21}
	}
	return req
}

func TestCreate_GuardsUniqueness(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createRequest("first", "go")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, createRequest("second", "  GO "))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict for normalized duplicate", err)
	}
	if len(store.campaigns) != 1 {
		t.Errorf("store has %d campaigns, conflicting create must not persist", len(store.campaigns))
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details == nil {
		t.Error("conflict must carry the conflicting campaign in details")
	}
}

func TestUpdate_ExcludesSelfFromGuard(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest("promo", "go"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Re-saving the campaign with its own value must not self-conflict.
	update := transport.UpdateCampaignRequest{
		Name:           "promo renamed",
		BasePipelineID: 10,
		BaseStatusID:   20,
		V1:             &transport.RuleRequest{Value: "go", ToPipelineID: 11, ToStatusID: 21},
		Active:         true,
	}
	got, err := svc.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Name != "promo renamed" {
		t.Errorf("name = %q, want promo renamed", got.Name)
	}
}

func TestUpdate_UnknownCampaign(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Update(context.Background(), uuid.New(), transport.UpdateCampaignRequest{
		Name: "ghost", BasePipelineID: 10, BaseStatusID: 20,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestHandleTrigger_Outcomes(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest("promo", "go"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cases := []struct {
		name    string
		req     transport.TriggerRequest
		outcome string
		matched bool
	}{
		{"match", transport.TriggerRequest{PipelineID: 10, StatusID: 20, Value: "go"}, "matched", true},
		{"value miss", transport.TriggerRequest{PipelineID: 10, StatusID: 20, Value: "stop"}, "no_rule_match", false},
		{"scope miss", transport.TriggerRequest{PipelineID: 99, StatusID: 20, Value: "go"}, "scope_mismatch", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.HandleTrigger(ctx, tc.req)
			if err != nil {
				t.Fatalf("HandleTrigger failed: %v", err)
			}
			if got.Outcome != tc.outcome {
				t.Errorf("outcome = %q, want %q", got.Outcome, tc.outcome)
			}
			if tc.matched {
				if got.CampaignID == nil || *got.CampaignID != created.ID {
					t.Errorf("campaign = %v, want %v", got.CampaignID, created.ID)
				}
				if got.Move == nil || got.Move.ToPipelineID != 11 || got.Move.ToStatusID != 21 {
					t.Errorf("move = %+v, want 11/21", got.Move)
				}
				if got.RuleSlot != "v1" {
					t.Errorf("slot = %q, want v1", got.RuleSlot)
				}
			} else {
				if got.Move != nil || got.CampaignID != nil {
					t.Errorf("no-match outcome must not carry a move: %+v", got)
				}
				if got.Reason == "" {
					t.Error("no-match outcome must carry a reason")
				}
			}
		})
	}
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest("promo", "go"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}
