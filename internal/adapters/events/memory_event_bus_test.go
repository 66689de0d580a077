package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

func TestMemoryEventBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, providers.EventChannelEmergencyUpdates)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelEmergencyUpdates)
	require.NoError(t, err)

	event := entities.NewEmergencyEvent(entities.EmergencyEventCreated, &entities.EmergencyRequest{ID: "r1"})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelEmergencyUpdates, event))

	for _, ch := range []<-chan *entities.EmergencyEvent{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "r1", got.RequestID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestMemoryEventBus_ClosesChannelWhenContextDone(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, providers.EventChannelEmergencyUpdates)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed")
	}
}
