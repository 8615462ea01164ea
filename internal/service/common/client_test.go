//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.ErrorIs(t, err, errAddressRequired)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestDeliver_NilEvent asserts that a nil event is rejected before any call.
func TestDeliver_NilEvent(t *testing.T) {
	t.Parallel()

	c := new(Client)

	err := c.Deliver(context.Background(), nil)
	require.ErrorIs(t, err, errEventRequired)
}

// TestWithCallTimeout_IgnoresNonPositive keeps the previous timeout for zero values.
func TestWithCallTimeout_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	c := &Client{callTimeout: time.Second}

	WithCallTimeout(0)(c)
	require.Equal(t, time.Second, c.callTimeout)

	WithCallTimeout(2 * time.Second)(c)
	require.Equal(t, 2*time.Second, c.callTimeout)
}
