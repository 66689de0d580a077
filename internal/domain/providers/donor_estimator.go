package providers

import (
	"context"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// DonorEstimator projects how many donors are near a request and how soon
// they could arrive. Implementations may be placeholders.
type DonorEstimator interface {
	Estimate(ctx context.Context, distanceKm float64) (entities.NearbyDonorsEstimate, error)
}
