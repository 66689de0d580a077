package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

func TestMergeProfile(t *testing.T) {
	identity := &entities.Identity{UID: "u1", Email: "a@example.com", PhotoURL: "https://img/old.jpg"}

	t.Run("defaults without document", func(t *testing.T) {
		p := services.MergeProfile(identity, nil)
		assert.Equal(t, "User", p.Name)
		assert.Equal(t, "Not provided", p.Phone)
		assert.Equal(t, "a@example.com", p.Email)
		assert.Equal(t, "https://img/old.jpg", p.Photo)
		assert.Empty(t, p.BloodType)
	})

	t.Run("document wins when set", func(t *testing.T) {
		withName := *identity
		withName.DisplayName = "Asha"
		withName.PhoneNumber = "+91000"
		doc := &entities.ProfileDocument{
			Name:        "Asha K",
			BloodType:   "B+",
			DOB:         "1990-01-01",
			LastDonated: "2024-01-01",
			City:        "Pune",
			PhotoURL:    "https://img/ignored.jpg",
		}

		p := services.MergeProfile(&withName, doc)
		assert.Equal(t, "Asha K", p.Name)
		assert.Equal(t, "+91000", p.Phone)
		assert.Equal(t, entities.BloodType("B+"), p.BloodType)
		assert.Equal(t, "1990-01-01", p.DOB)
		assert.Equal(t, "2024-01-01", p.LastDonated)
		assert.Equal(t, "Pune", p.City)
		assert.Equal(t, "https://img/old.jpg", p.Photo)
	})
}

type profileFixture struct {
	identities *MockIdentityRepository
	profiles   *MockProfileRepository
	storage    *MockObjectStorage
	service    *services.ProfileService
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		identities: new(MockIdentityRepository),
		profiles:   new(MockProfileRepository),
		storage:    new(MockObjectStorage),
	}
	f.service = services.NewProfileService(f.identities, f.profiles, f.storage)
	f.identities.On("Get", mock.Anything, "u1").Return(&entities.Identity{
		UID: "u1", DisplayName: "Asha", Email: "a@example.com", PhotoURL: "https://img/old.jpg",
	}, nil)
	f.profiles.On("Get", mock.Anything, "u1").Return(&entities.ProfileDocument{UID: "u1", BloodType: "O-"}, nil)
	return f
}

func sampleEdit() entities.ProfileEdit {
	return entities.ProfileEdit{
		Name:      "Asha K",
		Email:     "changed@example.com",
		Phone:     "+91999",
		Photo:     "https://img/old.jpg",
		BloodType: "O-",
		City:      "Pune",
	}
}

func TestProfileService_SaveWithoutImageKeepsPhoto(t *testing.T) {
	f := newProfileFixture()
	f.identities.On("UpdateProfile", mock.Anything, "u1", "Asha K", "https://img/old.jpg").Return(nil)
	f.profiles.On("Update", mock.Anything, mock.MatchedBy(func(d *entities.ProfileDocument) bool {
		return d.UID == "u1" && d.PhotoURL == "https://img/old.jpg" && d.City == "Pune" && d.UpdatedAt != nil
	})).Return(nil)

	got, err := f.service.Save(context.Background(), "u1", sampleEdit(), nil)

	require.NoError(t, err)
	assert.Equal(t, "https://img/old.jpg", got.Photo)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "Asha K", got.Name)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.identities.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestProfileService_SaveWithImageUsesUploadedURL(t *testing.T) {
	f := newProfileFixture()
	body := strings.NewReader("jpeg-bytes")
	upload := &services.ImageUpload{Filename: "me.jpg", ContentType: "image/jpeg", Size: 10, Body: body}

	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "profileImages/u1/profile_") && strings.HasSuffix(key, "_me.jpg")
	}), body, int64(10), "image/jpeg").Return("https://img/new.jpg", nil)
	f.identities.On("UpdateProfile", mock.Anything, "u1", "Asha K", "https://img/new.jpg").Return(nil)
	f.profiles.On("Update", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.Save(context.Background(), "u1", sampleEdit(), upload)

	require.NoError(t, err)
	assert.Equal(t, "https://img/new.jpg", got.Photo)
}

func TestProfileService_SaveAbortsOnFirstFailure(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		f := newProfileFixture()
		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone"))

		_, err := f.service.Save(context.Background(), "u1", sampleEdit(), &services.ImageUpload{Filename: "a.png", Body: strings.NewReader("x"), Size: 1})

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, services.ProfileUpdateFailedMessage, appErr.Message)
		f.identities.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("identity", func(t *testing.T) {
		f := newProfileFixture()
		f.identities.On("UpdateProfile", mock.Anything, "u1", mock.Anything, mock.Anything).Return(errors.New("auth down"))

		_, err := f.service.Save(context.Background(), "u1", sampleEdit(), nil)

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, services.ProfileUpdateFailedMessage, appErr.Message)
		f.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("document", func(t *testing.T) {
		f := newProfileFixture()
		f.identities.On("UpdateProfile", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
		f.profiles.On("Update", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := f.service.Save(context.Background(), "u1", sampleEdit(), nil)

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, services.ProfileUpdateFailedMessage, appErr.Message)
	})
}

func TestProfileService_SaveRejectsUnknownBloodType(t *testing.T) {
	f := newProfileFixture()
	edit := sampleEdit()
	edit.BloodType = "Q+"

	_, err := f.service.Save(context.Background(), "u1", edit, nil)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, services.ProfileUpdateFailedMessage, appErr.Message)
}

func TestProfileImageKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "profileImages/u1/profile_1700000000123_photo.png", services.ProfileImageKey("u1", "photo.png", at))
	assert.Equal(t, "profileImages/u1/profile_1700000000123_evil.png", services.ProfileImageKey("u1", "../../evil.png", at))
	assert.Equal(t, "profileImages/u1/profile_1700000000123_c.png", services.ProfileImageKey("u1", `C:\a\c.png`, at))
}
