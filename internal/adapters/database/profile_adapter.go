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

const usersTable = "users"

// ProfileAdapter implements the ProfileRepository interface on the users table
type ProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfileAdapter creates a new profile adapter
func NewProfileAdapter(client *postgres.Client) repositories.ProfileRepository {
	return &ProfileAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Get retrieves the profile document for uid, or nil when none was written yet
func (a *ProfileAdapter) Get(ctx context.Context, uid string) (*entities.ProfileDocument, error) {
	query, args, err := a.db.Select(
		"uid", "name", "phone", "photo_url", "blood_type", "dob",
		"last_donated", "address", "city", "updated_at",
	).From(usersTable).
		Where(goqu.Ex{"uid": uid}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doc := &entities.ProfileDocument{}
	var name, phone, photoURL, bloodType, dob, lastDonated, address, city sql.NullString
	var updatedAt sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&doc.UID,
		&name,
		&phone,
		&photoURL,
		&bloodType,
		&dob,
		&lastDonated,
		&address,
		&city,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user profile", err)
	}

	doc.Name = name.String
	doc.Phone = phone.String
	doc.PhotoURL = photoURL.String
	doc.BloodType = entities.BloodType(bloodType.String)
	doc.DOB = dob.String
	doc.LastDonated = lastDonated.String
	doc.Address = address.String
	doc.City = city.String
	if updatedAt.Valid {
		t := updatedAt.Time
		doc.UpdatedAt = &t
	}

	return doc, nil
}

// Update writes every editable field. The row is created if registration did
// not write one.
func (a *ProfileAdapter) Update(ctx context.Context, doc *entities.ProfileDocument) error {
	if doc == nil || doc.UID == "" {
		return apperrors.NewValidationError("profile document requires a uid")
	}

	updatedAt := time.Now().UTC()
	if doc.UpdatedAt != nil {
		updatedAt = doc.UpdatedAt.UTC()
	}

	fields := goqu.Record{
		"name":         doc.Name,
		"phone":        nullString(doc.Phone),
		"photo_url":    nullString(doc.PhotoURL),
		"blood_type":   nullString(string(doc.BloodType)),
		"dob":          nullString(doc.DOB),
		"last_donated": nullString(doc.LastDonated),
		"address":      nullString(doc.Address),
		"city":         nullString(doc.City),
		"updated_at":   updatedAt,
	}

	insert := goqu.Record{"uid": doc.UID}
	for k, v := range fields {
		insert[k] = v
	}

	query, args, err := a.db.Insert(usersTable).
		Rows(insert).
		OnConflict(goqu.DoUpdate("uid", fields)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to update user %s", doc.UID), err)
	}

	return nil
}
