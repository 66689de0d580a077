package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

// MemoryEventBus delivers events within a single process. It backs the API
// when Redis is not available.
type MemoryEventBus struct {
	local *fanout
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{local: newFanout()}
}

func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.EmergencyEvent) error {
	b.local.broadcast(channel, event)
	return nil
}

func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error) {
	eventChan, count := b.local.add(channel)
	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("Subscribed to in-memory channel")

	go func() {
		<-ctx.Done()
		b.local.remove(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *MemoryEventBus) Close() error {
	for _, channel := range b.local.channels() {
		b.local.closeChannel(channel)
	}
	return nil
}
