package entities

import "time"

// DonationTypeEmergency marks donations made against an emergency request
const DonationTypeEmergency = "emergency"

// DonationRecord describes a confirmed donation. It is the payload handed to
// donation listeners and the row kept in the donation history.
type DonationRecord struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId,omitempty" db:"user_id"`
	RequestID string    `json:"requestId" db:"request_id"`
	Type      string    `json:"type" db:"type"`
	Hospital  string    `json:"hospital" db:"hospital"`
	Location  string    `json:"location" db:"location"`
	BloodType BloodType `json:"bloodType" db:"blood_type"`
	Units     int       `json:"units" db:"units"`
	Date      string    `json:"date" db:"donation_date"`
	Time      string    `json:"time" db:"donation_time"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NewEmergencyDonation builds the record for a confirmed response to req.
// Date and Time are the UTC calendar date and wall clock time of at.
func NewEmergencyDonation(req *EmergencyRequest, at time.Time) DonationRecord {
	utc := at.UTC()
	return DonationRecord{
		ID:        req.ID,
		RequestID: req.ID,
		Type:      DonationTypeEmergency,
		Hospital:  req.Hospital,
		Location:  req.Location,
		BloodType: req.BloodType,
		Units:     req.UnitsRequired(),
		Date:      utc.Format(time.DateOnly),
		Time:      utc.Format(time.TimeOnly),
		CreatedAt: utc,
	}
}
