package providers

import (
	"context"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// SupportChannel answers chat messages sent from the response view
type SupportChannel interface {
	// Reply returns the hospital side answer to msg about req
	Reply(ctx context.Context, req *entities.EmergencyRequest, msg entities.ChatMessage) (entities.ChatMessage, error)
}
