package repositories

import (
	"context"
	"time"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// EmergencyRepository defines the interface for the emergencyRequests collection
type EmergencyRepository interface {
	// ListActive returns all active requests, newest first
	ListActive(ctx context.Context) ([]entities.EmergencyRequest, error)

	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id string) (*entities.EmergencyRequest, error)

	// Create stores a new request
	Create(ctx context.Context, req *entities.EmergencyRequest) error

	// RecordDonorResponse increments donorsResponded and stamps donorResponseTime
	// in one atomic step and reports the resulting count. When the count reaches
	// the required units the request is deleted in the same step.
	RecordDonorResponse(ctx context.Context, id string, at time.Time) (*entities.DonorResponseResult, error)

	// Delete removes a request
	Delete(ctx context.Context, id string) error
}
