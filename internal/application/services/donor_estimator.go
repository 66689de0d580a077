package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

// PlaceholderEstimator produces a randomized nearby-donor projection. The
// numbers are for display only: 3 to 12 donors, three minutes per kilometer,
// radius rounded up to the next kilometer.
type PlaceholderEstimator struct {
	intN func(n int) int
}

// NewPlaceholderEstimator creates the placeholder estimator
func NewPlaceholderEstimator() providers.DonorEstimator {
	return &PlaceholderEstimator{intN: rand.IntN}
}

// Estimate implements providers.DonorEstimator
func (e *PlaceholderEstimator) Estimate(_ context.Context, distanceKm float64) (entities.NearbyDonorsEstimate, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return entities.NearbyDonorsEstimate{}, fmt.Errorf("invalid distance %v", distanceKm)
	}

	return entities.NearbyDonorsEstimate{
		Count:         e.intN(10) + 3,
		EstimatedTime: fmt.Sprintf("%d minutes", int(math.Floor(distanceKm*3))),
		Radius:        fmt.Sprintf("%d km", int(math.Ceil(distanceKm))),
		Placeholder:   true,
	}, nil
}
