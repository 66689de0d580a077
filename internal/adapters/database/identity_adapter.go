package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

const identitiesTable = "identities"

// IdentityAdapter implements the IdentityRepository interface. Accounts are
// registered elsewhere; this adapter only reads them and updates the display
// name and photo.
type IdentityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewIdentityAdapter creates a new identity adapter
func NewIdentityAdapter(client *postgres.Client) repositories.IdentityRepository {
	return &IdentityAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Get retrieves the identity record for uid
func (a *IdentityAdapter) Get(ctx context.Context, uid string) (*entities.Identity, error) {
	query, args, err := a.db.Select("uid", "display_name", "email", "phone_number", "photo_url").
		From(identitiesTable).
		Where(goqu.Ex{"uid": uid}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	identity := &entities.Identity{}
	var displayName, phone, photoURL sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&identity.UID,
		&displayName,
		&identity.Email,
		&phone,
		&photoURL,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("identity %s not found", uid))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get identity", err)
	}

	identity.DisplayName = displayName.String
	identity.PhoneNumber = phone.String
	identity.PhotoURL = photoURL.String

	return identity, nil
}

// UpdateProfile sets the display name and photo URL
func (a *IdentityAdapter) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	query, args, err := a.db.Update(identitiesTable).
		Set(goqu.Record{
			"display_name": displayName,
			"photo_url":    nullString(photoURL),
			"updated_at":   time.Now().UTC(),
		}).
		Where(goqu.Ex{"uid": uid}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update identity", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("identity %s not found", uid))
	}

	return nil
}
