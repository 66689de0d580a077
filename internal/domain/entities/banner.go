package entities

import "time"

// Banner is the transient "new emergency for your blood type" notification
type Banner struct {
	Request      EmergencyRequest `json:"request"`
	Animate      bool             `json:"animate"`
	AnimateForMs int64            `json:"animateForMs"`
}

// NewBanner creates an animated banner for req
func NewBanner(req EmergencyRequest, animateFor time.Duration) *Banner {
	return &Banner{
		Request:      req,
		Animate:      true,
		AnimateForMs: animateFor.Milliseconds(),
	}
}
