package providers

import (
	"context"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// DonationListener is notified after a donation is confirmed
type DonationListener interface {
	OnDonationConfirmed(ctx context.Context, userID string, record entities.DonationRecord) error
}
