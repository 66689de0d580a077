package repositories

import (
	"context"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// IdentityRepository defines the interface for the auth identity store
type IdentityRepository interface {
	// Get retrieves the identity record for uid
	Get(ctx context.Context, uid string) (*entities.Identity, error)

	// UpdateProfile sets the display name and photo URL. An empty photoURL clears it.
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
}

// ProfileRepository defines the interface for the "users" collection
type ProfileRepository interface {
	// Get retrieves the profile document for uid. A missing document yields
	// (nil, nil): identities may exist before their profile is written.
	Get(ctx context.Context, uid string) (*entities.ProfileDocument, error)

	// Update writes every editable field of doc
	Update(ctx context.Context, doc *entities.ProfileDocument) error
}

// DonationRepository defines the interface for the donation history
type DonationRepository interface {
	// Create stores a donation record
	Create(ctx context.Context, record *entities.DonationRecord) error

	// ListByUser returns a user's donations, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error)
}
