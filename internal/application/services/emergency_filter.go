package services

import (
	"strings"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/pkg/geo"
)

// EmergencyFilter holds the browse filters. Zero values disable a predicate.
type EmergencyFilter struct {
	BloodType     entities.BloodType
	Query         string
	MaxDistanceKm *float64
}

func (f EmergencyFilter) distanceActive(loc *entities.UserLocation) bool {
	return f.MaxDistanceKm != nil && *f.MaxDistanceKm > 0 && loc != nil
}

// FilterEmergencies returns the requests matching every active filter in their
// original order. Outputs are copies with IsRare, DistanceKm and the defaulted
// counts filled in.
func FilterEmergencies(requests []entities.EmergencyRequest, filter EmergencyFilter, loc *entities.UserLocation, rare entities.RaritySet) []entities.EmergencyRequest {
	out := make([]entities.EmergencyRequest, 0, len(requests))
	if len(requests) == 0 {
		return out
	}

	query := strings.ToLower(filter.Query)
	byType := filter.BloodType != "" && filter.BloodType != entities.BloodTypeFilterAll
	byDistance := filter.distanceActive(loc)

	for i := range requests {
		req := requests[i]

		if byType && req.BloodType != filter.BloodType {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(req.Hospital), query) &&
			!strings.Contains(strings.ToLower(req.Location), query) {
			continue
		}

		var distance *float64
		if loc != nil && req.Coordinates != nil {
			d := geo.Distance(loc.Lat, loc.Lng, req.Coordinates.Latitude, req.Coordinates.Longitude)
			distance = &d
		}
		if byDistance && (distance == nil || *distance > *filter.MaxDistanceKm) {
			continue
		}

		req.IsRare = rare.Contains(req.BloodType)
		req.DonorsResponded = req.DonorCount()
		req.Units = req.UnitsRequired()
		req.DistanceKm = distance
		out = append(out, req)
	}

	return out
}
