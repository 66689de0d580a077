package services

import (
	"context"
	"time"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

// CannedSupportChannel answers every chat message with the same text after a
// fixed delay.
type CannedSupportChannel struct {
	delay time.Duration
	text  string
	now   func() time.Time
}

// NewCannedSupportChannel creates a support channel with a fixed reply
func NewCannedSupportChannel(delay time.Duration, text string) providers.SupportChannel {
	return &CannedSupportChannel{delay: delay, text: text, now: time.Now}
}

// Reply waits for the configured delay, or until ctx is done
func (c *CannedSupportChannel) Reply(ctx context.Context, _ *entities.EmergencyRequest, _ entities.ChatMessage) (entities.ChatMessage, error) {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return entities.ChatMessage{}, ctx.Err()
	case <-timer.C:
	}

	return entities.ChatMessage{
		Text:      c.text,
		Sender:    entities.ChatSenderHospital,
		Timestamp: c.now().UTC(),
	}, nil
}
