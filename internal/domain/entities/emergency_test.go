package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmergencyRequest_Defaults(t *testing.T) {
	req := EmergencyRequest{Units: 0, DonorsResponded: -2}
	assert.Equal(t, 1, req.UnitsRequired())
	assert.Equal(t, 0, req.DonorCount())
	assert.False(t, req.IsFulfilled())

	req = EmergencyRequest{Units: 2, DonorsResponded: 2}
	assert.True(t, req.IsFulfilled())
}

func TestEmergencyRequest_ImpactLevel(t *testing.T) {
	tests := []struct {
		name string
		req  EmergencyRequest
		want ImpactLevel
	}{
		{"critical wins over units", EmergencyRequest{Urgency: UrgencyCritical, Units: 5}, ImpactHigh},
		{"many units", EmergencyRequest{Urgency: UrgencyUrgent, Units: 3}, ImpactMedium},
		{"two units", EmergencyRequest{Urgency: UrgencyStandard, Units: 2}, ImpactStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.ImpactLevel())
		})
	}
}

func TestEmergencyRequest_TimeAgo(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *EmergencyRequest {
		ts := now.Add(-d)
		return &EmergencyRequest{Timestamp: &ts}
	}

	assert.Equal(t, "Recently", (&EmergencyRequest{}).TimeAgo(now))
	assert.Equal(t, "0 min ago", at(30*time.Second).TimeAgo(now))
	assert.Equal(t, "59 min ago", at(59*time.Minute).TimeAgo(now))
	assert.Equal(t, "1 hr ago", at(time.Hour).TimeAgo(now))
	assert.Equal(t, "23 hr ago", at(23*time.Hour+59*time.Minute).TimeAgo(now))
	assert.Equal(t, "2 days ago", at(49*time.Hour).TimeAgo(now))
	assert.Equal(t, "0 min ago", at(-3*time.Minute).TimeAgo(now))
}

func TestEmergencyRequest_CompatibilityScore(t *testing.T) {
	req := &EmergencyRequest{BloodType: BloodTypeABNegative}

	tests := []struct {
		name   string
		viewer *UserProfile
		want   int
	}{
		{"same type", &UserProfile{BloodType: BloodTypeABNegative}, 100},
		{"shares the ABO letter", &UserProfile{BloodType: BloodTypeBPositive}, 70},
		{"unrelated type", &UserProfile{BloodType: BloodTypeONegative}, 40},
		{"no profile counts as A+", nil, 70},
		{"blank blood type counts as A+", &UserProfile{}, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, req.CompatibilityScore(tt.viewer))
		})
	}

	assert.Equal(t, 100, (&EmergencyRequest{BloodType: BloodTypeAPositive}).CompatibilityScore(nil))
	assert.Equal(t, 40, (&EmergencyRequest{BloodType: BloodTypeONegative}).CompatibilityScore(nil))
}

func TestEmergencyRequest_ContactAndDirections(t *testing.T) {
	req := EmergencyRequest{}
	assert.Equal(t, "Hospital Blood Bank", req.ContactNameOrDefault())
	assert.Empty(t, req.DirectionsURL())

	req.ContactName = "Dr. Menon"
	req.Coordinates = &Coordinates{Latitude: 12.5, Longitude: 77.25}
	assert.Equal(t, "Dr. Menon", req.ContactNameOrDefault())
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=12.5,77.25", req.DirectionsURL())
}

func TestEmergencyRequest_Validate(t *testing.T) {
	rare := NewRaritySet(DefaultRareBloodTypes)
	valid := func() EmergencyRequest {
		return EmergencyRequest{
			Hospital:  "AIIMS",
			Location:  "Delhi",
			BloodType: BloodTypeBombay,
			Urgency:   UrgencyUrgent,
			Units:     1,
		}
	}

	req := valid()
	assert.NoError(t, req.Validate(rare))

	tests := []struct {
		name   string
		mutate func(*EmergencyRequest)
	}{
		{"missing hospital", func(r *EmergencyRequest) { r.Hospital = "" }},
		{"missing location", func(r *EmergencyRequest) { r.Location = "" }},
		{"unknown blood type", func(r *EmergencyRequest) { r.BloodType = "C+" }},
		{"unknown urgency", func(r *EmergencyRequest) { r.Urgency = "Soon" }},
		{"zero units", func(r *EmergencyRequest) { r.Units = 0 }},
		{"negative donors", func(r *EmergencyRequest) { r.DonorsResponded = -1 }},
		{"latitude out of range", func(r *EmergencyRequest) { r.Coordinates = &Coordinates{Latitude: 91} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			assert.Error(t, req.Validate(rare))
		})
	}
}

func TestRaritySet(t *testing.T) {
	set := NewRaritySet([]string{"O h", "A2B-"})
	assert.True(t, set.Contains(BloodTypeBombay))
	assert.False(t, set.Contains(BloodTypeONegative))
	assert.True(t, set.IsKnown(BloodTypeONegative))
	assert.True(t, set.IsKnown("A2B-"))
	assert.False(t, set.IsKnown("C+"))
	assert.Equal(t, []BloodType{"A2B-", "O h"}, set.List())
}
