// Package service exposes client display state and visit groups.
package service

import (
	"context"
	"time"

	"salonbridge_backend/internal/clients/cache"
	"salonbridge_backend/internal/clients/domain"
	"salonbridge_backend/internal/clients/transport"
	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"
)

// FactsReader loads stored client facts.
type FactsReader interface {
	GetFacts(ctx context.Context, clientID int64) (*domain.ClientFacts, error)
	SetStoredState(ctx context.Context, clientID int64, state string) error
}

// GroupSource recomputes a client's visit groups from the recent logs.
type GroupSource interface {
	VisitGroupsForClient(ctx context.Context, clientID int64) ([]reconcile.ResolvedGroup, error)
}

type Service struct {
	repo   FactsReader
	groups GroupSource
	cache  *cache.StateCache
	loc    *time.Location
	log    *logger.Logger
}

func New(repo FactsReader, groups GroupSource, stateCache *cache.StateCache, loc *time.Location, log *logger.Logger) *Service {
	return &Service{repo: repo, groups: groups, cache: stateCache, loc: loc, log: log}
}

// DisplayedState resolves the single UI state for a client: the first
// matching decision-list rule, or the stored free-text fallback when no
// rule applies. Cache failures degrade to a fresh computation.
func (s *Service) DisplayedState(ctx context.Context, clientID int64) (transport.StateResponse, error) {
	if cached, err := s.cache.Get(ctx, clientID); err != nil {
		s.log.CacheError("get", err)
	} else if cached != nil {
		return transport.StateResponse{
			ClientID: clientID,
			State:    cached.State,
			Rule:     cached.Rule,
			Derived:  cached.Derived,
		}, nil
	}

	facts, err := s.repo.GetFacts(ctx, clientID)
	if err != nil {
		return transport.StateResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load client facts", err)
	}
	if facts == nil {
		return transport.StateResponse{}, apperr.NotFound("client facts not found")
	}

	response := transport.StateResponse{ClientID: clientID}
	if resolution, ok := domain.ResolveDisplayState(*facts, time.Now(), s.loc); ok {
		response.State = string(resolution.State)
		response.Rule = resolution.Rule
		response.Derived = true
	} else {
		response.State = facts.StoredState
	}

	if err := s.cache.Set(ctx, clientID, cache.CachedState{
		State:   response.State,
		Rule:    response.Rule,
		Derived: response.Derived,
	}); err != nil {
		s.log.CacheError("set", err)
	}

	return response, nil
}

// VisitGroups returns the client's resolved visit groups, newest first.
func (s *Service) VisitGroups(ctx context.Context, clientID int64) (transport.VisitGroupListResponse, error) {
	groups, err := s.groups.VisitGroupsForClient(ctx, clientID)
	if err != nil {
		return transport.VisitGroupListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to compute visit groups", err)
	}

	response := transport.VisitGroupListResponse{
		ClientID: clientID,
		Items:    make([]transport.VisitGroupResponse, 0, len(groups)),
	}
	for _, g := range groups {
		item := transport.VisitGroupResponse{
			Day:                    string(g.Key.Day),
			Type:                   string(g.Key.Type),
			Attendance:             g.Facts.AttendanceStatus,
			Staff:                  g.Facts.Staff,
			StaffNames:             g.Facts.StaffNames,
			TotalCostMinor:         g.Facts.TotalCostMinor,
			UniqueMastersCostMinor: g.UniqueMastersCostMinor,
			Events:                 g.EventCount,
		}
		if g.Datetime != nil {
			dt := g.Datetime.Format(time.RFC3339)
			item.Datetime = &dt
		}
		item.Services = make([]transport.VisitServiceResponse, 0, len(g.Facts.Services))
		for _, svc := range g.Facts.Services {
			item.Services = append(item.Services, transport.VisitServiceResponse{
				ID:        svc.ID,
				Title:     svc.Title,
				CostMinor: svc.CostMinor,
			})
		}
		response.Items = append(response.Items, item)
	}

	return response, nil
}

// SetStoredState updates the free-text fallback and drops the cached
// resolution so the change shows immediately.
func (s *Service) SetStoredState(ctx context.Context, clientID int64, state string) error {
	if err := s.repo.SetStoredState(ctx, clientID, state); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store state", err)
	}
	if err := s.cache.Invalidate(ctx, clientID); err != nil {
		s.log.CacheError("invalidate", err)
	}
	return nil
}

// InvalidateState drops the cached resolution for a client. Wired to the
// ClientFactsRecomputed event.
func (s *Service) InvalidateState(ctx context.Context, clientID int64) {
	if err := s.cache.Invalidate(ctx, clientID); err != nil {
		s.log.CacheError("invalidate", err)
	}
}
