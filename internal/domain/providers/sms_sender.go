package providers

import "context"

// SMSSender delivers a plain text message to a phone number
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}
