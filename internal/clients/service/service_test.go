package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonbridge_backend/internal/civil"
	"salonbridge_backend/internal/clients/domain"
	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"
)

type fakeFactsReader struct {
	facts       map[int64]*domain.ClientFacts
	factsErr    error
	storedState map[int64]string
}

func (f *fakeFactsReader) GetFacts(ctx context.Context, clientID int64) (*domain.ClientFacts, error) {
	if f.factsErr != nil {
		return nil, f.factsErr
	}
	return f.facts[clientID], nil
}

func (f *fakeFactsReader) SetStoredState(ctx context.Context, clientID int64, state string) error {
	if f.storedState == nil {
		f.storedState = make(map[int64]string)
	}
	f.storedState[clientID] = state
	return nil
}

type fakeGroupSource struct {
	groups []reconcile.ResolvedGroup
	err    error
}

func (f *fakeGroupSource) VisitGroupsForClient(ctx context.Context, clientID int64) ([]reconcile.ResolvedGroup, error) {
	return f.groups, f.err
}

func newTestService(repo FactsReader, groups GroupSource) *Service {
	// nil cache: the StateCache is nil-safe and behaves as a pass-through.
	return New(repo, groups, nil, civil.Location(2), logger.New("development"))
}

func TestDisplayedState_DerivedState(t *testing.T) {
	paid := time.Now().Add(72 * time.Hour)
	repo := &fakeFactsReader{facts: map[int64]*domain.ClientFacts{
		42: {ClientID: 42, PaidDate: &paid, IsRebooking: true},
	}}

	svc := newTestService(repo, &fakeGroupSource{})
	got, err := svc.DisplayedState(context.Background(), 42)
	if err != nil {
		t.Fatalf("DisplayedState failed: %v", err)
	}

	if !got.Derived {
		t.Error("expected a derived state")
	}
	if got.State != string(domain.StateRebook) || got.Rule != "rebook_future" {
		t.Errorf("got state %q rule %q, want rebook via rebook_future", got.State, got.Rule)
	}
}

func TestDisplayedState_FallsBackToStoredState(t *testing.T) {
	altegioID := int64(900)
	repo := &fakeFactsReader{facts: map[int64]*domain.ClientFacts{
		42: {ClientID: 42, AltegioClientID: &altegioID, StoredState: "called, thinking"},
	}}

	svc := newTestService(repo, &fakeGroupSource{})
	got, err := svc.DisplayedState(context.Background(), 42)
	if err != nil {
		t.Fatalf("DisplayedState failed: %v", err)
	}

	if got.Derived {
		t.Error("expected the fallback, not a derived state")
	}
	if got.State != "called, thinking" {
		t.Errorf("state = %q, want the stored free-text state", got.State)
	}
}

func TestDisplayedState_UnknownClient(t *testing.T) {
	svc := newTestService(&fakeFactsReader{}, &fakeGroupSource{})

	_, err := svc.DisplayedState(context.Background(), 42)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDisplayedState_RepoErrorIsInternal(t *testing.T) {
	svc := newTestService(&fakeFactsReader{factsErr: errors.New("boom")}, &fakeGroupSource{})

	_, err := svc.DisplayedState(context.Background(), 42)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("err = %v, want internal", err)
	}
}

func TestVisitGroups_MapsResolvedGroups(t *testing.T) {
	staff := "Maria"
	dt := time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)
	source := &fakeGroupSource{groups: []reconcile.ResolvedGroup{
		{
			Key:      reconcile.GroupKey{ClientID: 42, Day: "2024-03-20", Type: reconcile.GroupPaid},
			Datetime: &dt,
			Facts: reconcile.GroupFacts{
				Attendance:       reconcile.AttendanceAttended,
				AttendanceStatus: "attended",
				Staff:            &staff,
				StaffNames:       []string{"Maria"},
				Services:         []reconcile.ServiceLine{{ID: 2, Title: "Коррекція", CostMinor: 250000}},
				TotalCostMinor:   250000,
			},
			UniqueMastersCostMinor: 500000,
			EventCount:             3,
		},
	}}

	svc := newTestService(&fakeFactsReader{}, source)
	got, err := svc.VisitGroups(context.Background(), 42)
	if err != nil {
		t.Fatalf("VisitGroups failed: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.Day != "2024-03-20" || item.Type != "paid" || item.Attendance != "attended" {
		t.Errorf("item = %+v, want paid attended on 2024-03-20", item)
	}
	if item.TotalCostMinor != 250000 || item.UniqueMastersCostMinor != 500000 {
		t.Errorf("costs = %d/%d, want 250000/500000", item.TotalCostMinor, item.UniqueMastersCostMinor)
	}
	if item.Datetime == nil {
		t.Error("expected the datetime to be mapped")
	}
	if len(item.Services) != 1 || item.Services[0].CostMinor != 250000 {
		t.Errorf("services = %+v, want the single line", item.Services)
	}
}

func TestSetStoredState(t *testing.T) {
	repo := &fakeFactsReader{}
	svc := newTestService(repo, &fakeGroupSource{})

	if err := svc.SetStoredState(context.Background(), 42, "vip"); err != nil {
		t.Fatalf("SetStoredState failed: %v", err)
	}
	if repo.storedState[42] != "vip" {
		t.Errorf("stored = %q, want vip", repo.storedState[42])
	}
}
