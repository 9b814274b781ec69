package events

import (
	"context"
	"errors"
	"fmt"

	"eventpass/internal/shared/constants"
	"eventpass/pkg/cache"
	"eventpass/pkg/logger"
)

// TicketTypeCatalog resolves display data for an event's ticket types without
// importing the tickets package
type TicketTypeCatalog interface {
	Summaries(ctx context.Context, event *Event) ([]TicketTypeSummary, error)
}

// Service serves the browse endpoints. Its cached values are for display only.
type Service interface {
	SetCacheService(cacheService cache.Service)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	GetAllEvents(ctx context.Context) ([]EventResponse, error)
	Invalidate(ctx context.Context, eventID string)
}

type service struct {
	repo         Repository
	catalog      TicketTypeCatalog
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, catalog TicketTypeCatalog, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, catalog: catalog, log: log}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	fetch := func() (interface{}, error) {
		event, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := event.ToResponse()
		if s.catalog != nil && len(event.TicketTypeIDs) > 0 {
			summaries, err := s.catalog.Summaries(ctx, event)
			if err != nil {
				return nil, fmt.Errorf("failed to load ticket types: %w", err)
			}
			resp.TicketTypes = summaries
		}
		return resp, nil
	}

	var resp EventResponse
	if s.cacheService == nil {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		resp = data.(EventResponse)
		return &resp, nil
	}

	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id), constants.TTL_EVENT_DETAIL, fetch, &resp)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context) ([]EventResponse, error) {
	fetch := func() (interface{}, error) {
		events, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]EventResponse, 0, len(events))
		for i := range events {
			out = append(out, events[i].ToResponse())
		}
		return out, nil
	}

	if s.cacheService == nil {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		return data.([]EventResponse), nil
	}

	var out []EventResponse
	if err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_EVENTS_LIST, constants.TTL_EVENT_LIST, fetch, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops cached display data after the event's capacity moved
func (s *service) Invalidate(ctx context.Context, eventID string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(eventID), constants.CACHE_KEY_EVENTS_LIST); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate event cache", "event_id", eventID, "error", err)
	}
}
