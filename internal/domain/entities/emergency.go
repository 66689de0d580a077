package entities

import (
	"fmt"
	"strings"
	"time"
)

// Urgency is the triage level of an emergency request
type Urgency string

const (
	UrgencyCritical Urgency = "Critical"
	UrgencyUrgent   Urgency = "Urgent"
	UrgencyStandard Urgency = "Standard"
)

// IsValid reports whether u is a known urgency level
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyCritical, UrgencyUrgent, UrgencyStandard:
		return true
	}
	return false
}

// ImpactLevel is the emphasis shown on an emergency card
type ImpactLevel string

const (
	ImpactHigh     ImpactLevel = "high"
	ImpactMedium   ImpactLevel = "medium"
	ImpactStandard ImpactLevel = "standard"
)

const defaultContactName = "Hospital Blood Bank"

// Coordinates is a geographic point
type Coordinates struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// UserLocation is the viewer's position as reported by the client
type UserLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EmergencyRequest is a hospital-originated need for a blood type and unit quantity.
// Units and DonorsResponded are stored as given; use UnitsRequired and
// DonorCount for the defaulted values.
type EmergencyRequest struct {
	ID                string       `json:"id" db:"id"`
	Hospital          string       `json:"hospital" db:"hospital"`
	Location          string       `json:"location" db:"location"`
	Coordinates       *Coordinates `json:"coordinates,omitempty"`
	BloodType         BloodType    `json:"bloodType" db:"blood_type"`
	Urgency           Urgency      `json:"urgency" db:"urgency"`
	Units             int          `json:"units" db:"units"`
	DonorsResponded   int          `json:"donorsResponded" db:"donors_responded"`
	Timestamp         *time.Time   `json:"timestamp,omitempty" db:"created_at"`
	Notes             string       `json:"notes,omitempty" db:"notes"`
	ContactName       string       `json:"contactName,omitempty" db:"contact_name"`
	ContactPhone      string       `json:"contactPhone,omitempty" db:"contact_phone"`
	DonorResponseTime *time.Time   `json:"donorResponseTime,omitempty" db:"donor_response_time"`
	CreatedBy         string       `json:"createdBy,omitempty" db:"created_by"`

	// Derived on the way out of the filter, never stored.
	IsRare     bool     `json:"isRare,omitempty" db:"-"`
	DistanceKm *float64 `json:"distanceKm,omitempty" db:"-"`
}

// UnitsRequired returns Units, defaulting to 1.
func (e *EmergencyRequest) UnitsRequired() int {
	if e.Units < 1 {
		return 1
	}
	return e.Units
}

// DonorCount returns DonorsResponded, defaulting to 0.
func (e *EmergencyRequest) DonorCount() int {
	if e.DonorsResponded < 0 {
		return 0
	}
	return e.DonorsResponded
}

// IsFulfilled reports whether accumulated responses meet the required units.
func (e *EmergencyRequest) IsFulfilled() bool {
	return e.DonorCount() >= e.UnitsRequired()
}

// ImpactLevel classifies the request for display.
func (e *EmergencyRequest) ImpactLevel() ImpactLevel {
	switch {
	case e.Urgency == UrgencyCritical:
		return ImpactHigh
	case e.Units > 2:
		return ImpactMedium
	default:
		return ImpactStandard
	}
}

// CompatibilityScore rates how well viewer's blood type fits the request:
// 100 for the same type, 70 when the request type contains the viewer's ABO
// letter, 40 otherwise. A viewer without a blood type counts as A+.
func (e *EmergencyRequest) CompatibilityScore(viewer *UserProfile) int {
	own := BloodTypeAPositive
	if viewer != nil && viewer.BloodType != "" {
		own = viewer.BloodType
	}
	switch {
	case e.BloodType == own:
		return 100
	case strings.Contains(string(e.BloodType), string(own)[:1]):
		return 70
	default:
		return 40
	}
}

// ContactNameOrDefault returns the contact name or the generic blood bank label.
func (e *EmergencyRequest) ContactNameOrDefault() string {
	if e.ContactName == "" {
		return defaultContactName
	}
	return e.ContactName
}

// DirectionsURL returns a maps directions link, or "" without coordinates.
func (e *EmergencyRequest) DirectionsURL() string {
	if e.Coordinates == nil {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v",
		e.Coordinates.Latitude, e.Coordinates.Longitude)
}

// TimeAgo renders the age of the request relative to now.
func (e *EmergencyRequest) TimeAgo(now time.Time) string {
	if e.Timestamp == nil {
		return "Recently"
	}
	// Clock skew can put the timestamp slightly ahead of now
	minutes := max(int(now.Sub(*e.Timestamp)/time.Minute), 0)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%d hr ago", minutes/60)
	default:
		return fmt.Sprintf("%d days ago", minutes/60/24)
	}
}

// Validate checks a request submitted through the create flow.
func (e *EmergencyRequest) Validate(rare RaritySet) error {
	if e.Hospital == "" {
		return fmt.Errorf("hospital is required")
	}
	if e.Location == "" {
		return fmt.Errorf("location is required")
	}
	if !rare.IsKnown(e.BloodType) {
		return fmt.Errorf("unknown blood type %q", e.BloodType)
	}
	if !e.Urgency.IsValid() {
		return fmt.Errorf("unknown urgency %q", e.Urgency)
	}
	if e.Units < 1 {
		return fmt.Errorf("units must be at least 1")
	}
	if e.DonorsResponded < 0 {
		return fmt.Errorf("donorsResponded must not be negative")
	}
	if c := e.Coordinates; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return fmt.Errorf("coordinates out of range")
		}
	}
	return nil
}

// DonorResponseResult is what the store reports after recording a donor response.
type DonorResponseResult struct {
	DonorsResponded int  `json:"donorsResponded"`
	Units           int  `json:"units"`
	Fulfilled       bool `json:"fulfilled"`
}
