package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_RoundTrip(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(SubmitQueryEvent{Text: "glucose"}))
	require.NoError(t, eb.SendToUI(HealthEvent{Reachable: true}))

	assert.Equal(t, SubmitQueryEvent{Text: "glucose"}, <-eb.UIToCore())
	assert.Equal(t, HealthEvent{Reachable: true}, <-eb.CoreToUI())
}

func TestEventBus_FullChannelOpensBreaker(t *testing.T) {
	eb := NewEventBusWithCapacity(1)
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	require.NoError(t, eb.SendToUI(HealthEvent{}))
	for i := 0; i < 5; i++ {
		assert.Error(t, eb.SendToUI(HealthEvent{}))
	}

	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())
	assert.Len(t, reported, 5)
	assert.Equal(t, "SendToUI", reported[0].Operation)

	<-eb.CoreToUI()
	assert.Error(t, eb.SendToUI(HealthEvent{}), "open breaker rejects even with room")
}

func TestCircuitBreaker_HalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestEventBus_BreakerRecoversAfterTimeout(t *testing.T) {
	eb := newEventBus(1, NewCircuitBreaker(2, 20*time.Millisecond))
	defer eb.Close()

	require.NoError(t, eb.SendToUI(HealthEvent{}))
	assert.Error(t, eb.SendToUI(HealthEvent{}))
	assert.Error(t, eb.SendToUI(HealthEvent{}))
	require.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())

	<-eb.CoreToUI()
	time.Sleep(40 * time.Millisecond)

	require.NoError(t, eb.SendToUI(HealthEvent{Reachable: true}))
	assert.Equal(t, CircuitClosed, eb.GetCircuitBreakerState())
	assert.Equal(t, HealthEvent{Reachable: true}, <-eb.CoreToUI())
}

func TestEventBus_HalfOpenFailureReopens(t *testing.T) {
	eb := newEventBus(1, NewCircuitBreaker(1, 20*time.Millisecond))
	defer eb.Close()

	require.NoError(t, eb.SendToUI(HealthEvent{}))
	assert.Error(t, eb.SendToUI(HealthEvent{}))
	require.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())

	time.Sleep(40 * time.Millisecond)
	assert.Error(t, eb.SendToUI(HealthEvent{}), "channel still full")
	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())
}

func TestEventBus_SendToUIWaitDeliversOnceDrained(t *testing.T) {
	eb := NewEventBusWithCapacity(1)
	defer eb.Close()

	require.NoError(t, eb.SendToUI(HealthEvent{}))

	done := make(chan error, 1)
	go func() {
		done <- eb.SendToUIWait(context.Background(), ChatUpdateEvent{})
	}()

	assert.Never(t, func() bool { return len(done) > 0 }, 30*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, HealthEvent{}, <-eb.CoreToUI())
	require.NoError(t, <-done)
	assert.Equal(t, ChatUpdateEvent{}, <-eb.CoreToUI())
}

func TestEventBus_SendToUIWaitIgnoresOpenBreaker(t *testing.T) {
	eb := NewEventBusWithCapacity(1)
	defer eb.Close()

	require.NoError(t, eb.SendToUI(HealthEvent{}))
	for i := 0; i < 5; i++ {
		assert.Error(t, eb.SendToUI(HealthEvent{}))
	}
	require.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())
	<-eb.CoreToUI()

	require.NoError(t, eb.SendToUIWait(context.Background(), ChatUpdateEvent{}))
	assert.Equal(t, CircuitClosed, eb.GetCircuitBreakerState())
}

func TestEventBus_SendToUIWaitHonoursContext(t *testing.T) {
	eb := NewEventBusWithCapacity(1)
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	require.NoError(t, eb.SendToUI(HealthEvent{}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, eb.SendToUIWait(ctx, ChatUpdateEvent{}), context.DeadlineExceeded)
	require.Len(t, reported, 1)
	assert.Equal(t, "SendToUIWait", reported[0].Operation)
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	assert.NotPanics(t, eb.Close)
}
