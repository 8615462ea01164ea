package relay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/logger"
	repo "github.com/oshokin/ergomon/internal/repository/alerts"
)

// service keeps the latest alert per category and persists it.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// repo handles persistent storage of the latest alerts.
	repo repo.Repository
	// latest maps a category to its most recent event.
	latest map[domain.Category]*domain.Event
	// mu protects concurrent access to latest.
	mu sync.RWMutex
}

// newService creates a service backed by the provided repository.
func newService(ctx context.Context, repository repo.Repository) (*service, error) {
	s := &service{
		repo:   repository,
		latest: make(map[domain.Category]*domain.Event),
	}

	if repository == nil {
		return s, nil
	}

	events, err := repository.Load(ctx)
	switch {
	case err == nil:
		for _, event := range events {
			s.latest[event.Category] = event
		}
	case errors.Is(err, repo.ErrNotFound):
		// Start empty.
	default:
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	return s, nil
}

// Record stores the event as the latest of its category and persists the set.
// Events older than the stored one are ignored. When persisting fails the
// previous event of the category is restored.
func (s *service) Record(ctx context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.latest[event.Category]; ok && current.Timestamp.After(event.Timestamp) {
		logger.DebugKV(ctx, "Ignoring stale alert", "category", event.Category, "id", event.ID.String())

		return nil
	}

	previous, hadPrevious := s.latest[event.Category]
	s.latest[event.Category] = event.Clone()

	if s.repo != nil {
		if err := s.repo.Save(ctx, s.snapshot()); err != nil {
			logger.Errorf(ctx, "Failed to persist alerts: %v", err)

			if hadPrevious {
				s.latest[event.Category] = previous
			} else {
				delete(s.latest, event.Category)
			}

			return fmt.Errorf("persist alerts: %w", err)
		}
	}

	logger.InfoKV(ctx, "Alert relayed",
		"category", event.Category,
		"severity", event.Severity,
		"message", event.Message,
		"source", event.Source,
	)

	return nil
}

// Latest returns the most recent event per category in priority order.
func (s *service) Latest(ctx context.Context) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logger.DebugKV(ctx, "Latest alerts requested", "count", len(s.latest))

	return s.snapshot()
}

// snapshot clones the latest events in priority order. Callers hold mu.
func (s *service) snapshot() []*domain.Event {
	events := make([]*domain.Event, 0, len(s.latest))

	for _, category := range domain.Categories() {
		if event, ok := s.latest[category]; ok {
			events = append(events, event.Clone())
		}
	}

	return slices.Clip(events)
}
