package services

import (
	"time"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// NotificationTrigger decides whether the newest request deserves a banner
// for the viewer. It keeps no memory between evaluations.
type NotificationTrigger struct {
	window     time.Duration
	animateFor time.Duration
}

// NewNotificationTrigger creates a trigger with the given freshness window
// and banner animation length
func NewNotificationTrigger(window, animateFor time.Duration) *NotificationTrigger {
	return &NotificationTrigger{window: window, animateFor: animateFor}
}

// Evaluate looks only at requests[0]. A request without a timestamp is
// treated as created now.
func (t *NotificationTrigger) Evaluate(requests []entities.EmergencyRequest, viewer *entities.UserProfile, now time.Time) *entities.Banner {
	if viewer == nil || viewer.BloodType == "" || len(requests) == 0 {
		return nil
	}

	latest := requests[0]
	if latest.BloodType != viewer.BloodType {
		return nil
	}

	created := now
	if latest.Timestamp != nil {
		created = *latest.Timestamp
	}
	if now.Sub(created) >= t.window {
		return nil
	}

	return entities.NewBanner(latest, t.animateFor)
}
