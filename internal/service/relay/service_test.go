package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
	repo "github.com/oshokin/ergomon/internal/repository/alerts"
)

var (
	errTestLoad = errors.New("test load error")
	errTestSave = errors.New("test save error")
)

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// events are returned from Load operations.
	events []*domain.Event
	// loadErr is the error to return from Load operations.
	loadErr error
	// saveErr is the error to return from Save operations.
	saveErr error
	// saved stores the last events passed to Save operations.
	saved []*domain.Event
}

// Load returns the configured events or error.
func (m *memoryRepository) Load(context.Context) ([]*domain.Event, error) {
	return m.events, m.loadErr
}

// Save stores the provided events in memory.
func (m *memoryRepository) Save(_ context.Context, events []*domain.Event) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = events

	return nil
}

func testEvent(category domain.Category, at time.Time) *domain.Event {
	return domain.NewEvent(category, "message "+string(category), domain.SeverityWarning, at, &domain.Actor{
		Hostname: "Oleg Shokin",
		Username: "o.shokin",
	})
}

// TestNewService_LoadsEventsOrStartsEmpty asserts newService behavior on existing, missing, and error states.
func TestNewService_LoadsEventsOrStartsEmpty(t *testing.T) {
	t.Parallel()

	stored := testEvent(domain.CategoryPosture, time.Unix(100, 0))

	s, err := newService(context.Background(), &memoryRepository{events: []*domain.Event{stored}})
	require.NoError(t, err)
	require.Len(t, s.Latest(context.Background()), 1)

	s, err = newService(context.Background(), &memoryRepository{loadErr: repo.ErrNotFound})
	require.NoError(t, err)
	require.Empty(t, s.Latest(context.Background()))

	s, err = newService(context.Background(), &memoryRepository{loadErr: errTestLoad})
	require.ErrorIs(t, err, errTestLoad)
	require.Nil(t, s)
}

// TestService_RecordKeepsNewestPerCategory verifies replacement, stale rejection and ordering.
func TestService_RecordKeepsNewestPerCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	memory := new(memoryRepository)

	s, err := newService(ctx, memory)
	require.NoError(t, err)

	base := time.Unix(1_000, 0).UTC()

	require.NoError(t, s.Record(ctx, testEvent(domain.CategoryPosture, base)))
	require.NoError(t, s.Record(ctx, testEvent(domain.CategoryFatigue, base)))

	newer := testEvent(domain.CategoryPosture, base.Add(time.Minute))
	require.NoError(t, s.Record(ctx, newer))

	stale := testEvent(domain.CategoryPosture, base.Add(-time.Minute))
	require.NoError(t, s.Record(ctx, stale))

	latest := s.Latest(ctx)
	require.Len(t, latest, 2)
	require.Equal(t, domain.CategoryFatigue, latest[0].Category)
	require.Equal(t, domain.CategoryPosture, latest[1].Category)
	require.Equal(t, newer.ID, latest[1].ID)

	// Cloned on the way in and out.
	require.NotSame(t, newer, latest[1])
	require.Len(t, memory.saved, 2)
}

// TestService_RecordReportsPersistenceFailure surfaces repository errors and
// keeps memory in line with what was last persisted.
func TestService_RecordReportsPersistenceFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	memory := new(memoryRepository)

	s, err := newService(ctx, memory)
	require.NoError(t, err)

	stored := testEvent(domain.CategoryDistance, time.Unix(5, 0))
	require.NoError(t, s.Record(ctx, stored))

	memory.saveErr = errTestSave

	err = s.Record(ctx, testEvent(domain.CategoryDistance, time.Unix(6, 0)))
	require.ErrorIs(t, err, errTestSave)

	err = s.Record(ctx, testEvent(domain.CategoryPosture, time.Unix(7, 0)))
	require.ErrorIs(t, err, errTestSave)

	latest := s.Latest(ctx)
	require.Len(t, latest, 1)
	require.Equal(t, stored.ID, latest[0].ID)
	require.Equal(t, memory.saved, latest)
}

// TestResolveListenAddress prefers the override.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, ":1", resolveListenAddress(":1", ""))
	require.Equal(t, ":2", resolveListenAddress(":1", ":2"))
	require.Empty(t, resolveListenAddress("", ""))
}
