package alert

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestActor_Clone verifies that Clone returns a deep copy and handles nil safely.
func TestActor_Clone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "desk-01",
		Username: "o.shokin",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestNewEvent verifies IDs are unique and the source is copied.
func TestNewEvent(t *testing.T) {
	t.Parallel()

	ts := time.Now().UTC().Truncate(time.Second)
	source := &Actor{Hostname: "desk-01", Username: "o.shokin"}

	first := NewEvent(CategoryPosture, "sit up", SeverityWarning, ts, source)
	second := NewEvent(CategoryPosture, "sit up", SeverityWarning, ts, source)

	require.NotEqual(t, uuid.Nil, first.ID)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, source, first.Source)
	require.NotSame(t, source, first.Source)

	c := first.Clone()
	require.Equal(t, first, c)
	require.NotSame(t, first.Source, c.Source)
	require.Nil(t, (*Event)(nil).Clone())
}

// TestParseCategory accepts known names only.
func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, category := range Categories() {
		parsed, err := ParseCategory(string(category))
		require.NoError(t, err)
		require.Equal(t, category, parsed)
	}

	_, err := ParseCategory("hydration")
	require.ErrorIs(t, err, errUnknownCategory)

	severity, err := ParseSeverity("critical")
	require.NoError(t, err)
	require.Equal(t, SeverityCritical, severity)

	_, err = ParseSeverity("loud")
	require.ErrorIs(t, err, errUnknownSeverity)
}

// TestTemplateFor covers known categories and the fallback.
func TestTemplateFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Severe Fatigue Warning", TemplateFor(&Event{Category: CategorySevere}).Title)

	fallback := TemplateFor(&Event{Category: "custom", Message: "drink water"})
	require.Equal(t, "Alert", fallback.Title)
	require.Equal(t, "drink water", fallback.Voice)
}
