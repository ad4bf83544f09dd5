package core

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archith7/MediSaarthi/internal/testutil"
)

func TestHealthMonitor_FlipsOnFailureAndRecovery(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.HandleSequence(http.MethodGet, "/health",
		testutil.DropConnection,
		testutil.JSON(http.StatusOK, map[string]any{"status": "healthy"}),
	)
	h := NewHealthMonitor(newTestClient(t, api), time.Hour)

	var changes []bool
	h.OnChange(func(reachable bool) { changes = append(changes, reachable) })

	assert.False(t, h.ProbeOnce(context.Background()))
	assert.False(t, h.Reachable())

	assert.True(t, h.ProbeOnce(context.Background()))
	assert.True(t, h.Reachable())

	h.ProbeOnce(context.Background())
	assert.Equal(t, []bool{false, true}, changes)
}

func TestHealthMonitor_NonSuccessStatusIsUnreachable(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/health", testutil.JSON(http.StatusServiceUnavailable, map[string]any{"status": "down"}))
	h := NewHealthMonitor(newTestClient(t, api), 0)

	assert.False(t, h.ProbeOnce(context.Background()))
}

func TestHealthMonitor_RunProbesPeriodically(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	h := NewHealthMonitor(newTestClient(t, api), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(api.RequestsTo("/health")) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, h.Reachable())

	cancel()
	<-done
}
