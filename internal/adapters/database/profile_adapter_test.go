package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksetu/bloodhub/internal/adapters/database"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

func TestProfileAdapter_GetMissingIsNil(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewProfileAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE \("uid" = 'u1'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"uid"}))

	doc, err := adapter.Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestProfileAdapter_Get(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewProfileAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"uid", "name", "phone", "photo_url", "blood_type", "dob", "last_donated", "address", "city", "updated_at",
		}).AddRow("u1", "Asha", nil, nil, "B+", "1990-01-01", nil, nil, "Pune", nil))

	doc, err := adapter.Get(context.Background(), "u1")

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Asha", doc.Name)
	assert.Equal(t, entities.BloodType("B+"), doc.BloodType)
	assert.Equal(t, "Pune", doc.City)
	assert.Empty(t, doc.Phone)
	assert.Nil(t, doc.UpdatedAt)
}

func TestProfileAdapter_UpdateUpserts(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewProfileAdapter(client)

	mock.ExpectExec(`INSERT INTO "users" .* ON CONFLICT \(uid\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Update(context.Background(), &entities.ProfileDocument{UID: "u1", Name: "Asha", City: "Pune"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileAdapter_UpdateRequiresUID(t *testing.T) {
	client, _ := setupMockDB(t)
	adapter := database.NewProfileAdapter(client)

	err := adapter.Update(context.Background(), &entities.ProfileDocument{Name: "x"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestIdentityAdapter_UpdateProfileMissing(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewIdentityAdapter(client)

	mock.ExpectExec(`UPDATE "identities" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.UpdateProfile(context.Background(), "u1", "Asha", "")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
