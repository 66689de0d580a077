package entities

import "time"

// ResponseView is a state of the emergency response flow
type ResponseView string

const (
	ViewEmergencyList     ResponseView = "emergency-list"
	ViewEmergencyDetail   ResponseView = "emergency-detail"
	ViewDonorConfirmation ResponseView = "donor-confirmation"
	ViewDonationConfirmed ResponseView = "donation-confirmed"

	// ViewError is rendered in place of any view the flow does not know.
	ViewError ResponseView = "error"
)

// IsKnown reports whether v is one of the four flow states
func (v ResponseView) IsKnown() bool {
	switch v {
	case ViewEmergencyList, ViewEmergencyDetail, ViewDonorConfirmation, ViewDonationConfirmed:
		return true
	}
	return false
}

// ResponseSession is the persisted state of one user's response flow
type ResponseSession struct {
	UserID       string                `json:"userId"`
	View         ResponseView          `json:"view"`
	Selected     *EmergencyRequest     `json:"selected,omitempty"`
	ViewerBlood  BloodType             `json:"viewerBloodType,omitempty"`
	NearbyDonors *NearbyDonorsEstimate `json:"nearbyDonors,omitempty"`
	Error        string                `json:"error,omitempty"`
	ChatMessages []ChatMessage         `json:"chatMessages,omitempty"`
	Donation     *DonationRecord       `json:"donation,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewResponseSession returns a session positioned on the list view
func NewResponseSession(userID string) *ResponseSession {
	return &ResponseSession{
		UserID:    userID,
		View:      ViewEmergencyList,
		UpdatedAt: time.Now().UTC(),
	}
}
