package entities

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyEventType represents what happened to an emergency request
type EmergencyEventType string

const (
	EmergencyEventCreated   EmergencyEventType = "created"
	EmergencyEventUpdated   EmergencyEventType = "updated"
	EmergencyEventFulfilled EmergencyEventType = "fulfilled"
)

// EmergencyEvent announces a change to the active request list
type EmergencyEvent struct {
	ID        string             `json:"id"`
	Type      EmergencyEventType `json:"type"`
	RequestID string             `json:"requestId"`
	Request   *EmergencyRequest  `json:"request,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewEmergencyEvent creates a new emergency event
func NewEmergencyEvent(eventType EmergencyEventType, req *EmergencyRequest) *EmergencyEvent {
	return &EmergencyEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		RequestID: req.ID,
		Request:   req,
		Timestamp: time.Now().UTC(),
	}
}
