package providers

import (
	"context"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to emergency events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelEmergencyUpdates carries every change to the active request list
const EventChannelEmergencyUpdates = "emergency:updates"
