package entities

import (
	"fmt"
	"math"
	"time"
)

// Profile values shown when neither source has one
const (
	DefaultDisplayName = "User"
	PhoneNotProvided   = "Not provided"
)

// Identity is the account record held by the auth identity store
type Identity struct {
	UID         string `json:"uid" db:"uid"`
	DisplayName string `json:"displayName" db:"display_name"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
	PhotoURL    string `json:"photoURL" db:"photo_url"`
}

// ProfileDocument is the user record held in the "users" collection
type ProfileDocument struct {
	UID         string     `json:"uid" db:"uid"`
	Name        string     `json:"name" db:"name"`
	Phone       string     `json:"phone" db:"phone"`
	PhotoURL    string     `json:"photoURL" db:"photo_url"`
	BloodType   BloodType  `json:"bloodType" db:"blood_type"`
	DOB         string     `json:"dob" db:"dob"`
	LastDonated string     `json:"lastDonated" db:"last_donated"`
	Address     string     `json:"address" db:"address"`
	City        string     `json:"city" db:"city"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// UserProfile is the merged view of Identity and ProfileDocument
type UserProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Photo       string    `json:"photo,omitempty"`
	BloodType   BloodType `json:"bloodType"`
	DOB         string    `json:"dob"`
	LastDonated string    `json:"lastDonated"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
}

// HasPhone reports whether a real phone number is on file.
func (p *UserProfile) HasPhone() bool {
	return p != nil && p.Phone != "" && p.Phone != PhoneNotProvided
}

// LastDonationText renders LastDonated relative to now.
func (p *UserProfile) LastDonationText(now time.Time) string {
	if p.LastDonated == "" {
		return "No donations recorded"
	}
	last, err := parseDate(p.LastDonated)
	if err != nil {
		return "No donations recorded"
	}

	diff := math.Abs(float64(now.Sub(last)))
	days := int(math.Ceil(diff / float64(24*time.Hour)))

	switch {
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// ProfileEdit is the staged form state of the profile editor. Email is
// accepted for round-tripping but never persisted.
type ProfileEdit struct {
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone"`
	Photo       string    `json:"photo,omitempty"`
	BloodType   BloodType `json:"bloodType"`
	DOB         string    `json:"dob"`
	LastDonated string    `json:"lastDonated"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
}

// EditFromProfile seeds the form state from the displayed profile.
func EditFromProfile(p *UserProfile) ProfileEdit {
	return ProfileEdit{
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Photo:       p.Photo,
		BloodType:   p.BloodType,
		DOB:         p.DOB,
		LastDonated: p.LastDonated,
		Address:     p.Address,
		City:        p.City,
	}
}
