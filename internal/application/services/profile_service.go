package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// ProfileUpdateFailedMessage is the only error a failed save reports to the user
const ProfileUpdateFailedMessage = "Failed to update profile. Please try again."

// ImageUpload is an optional new profile photo
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileService reads and edits the merged user profile
type ProfileService struct {
	identities repositories.IdentityRepository
	profiles   repositories.ProfileRepository
	storage    providers.ObjectStorage
	now        func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(identities repositories.IdentityRepository, profiles repositories.ProfileRepository, storage providers.ObjectStorage) *ProfileService {
	return &ProfileService{
		identities: identities,
		profiles:   profiles,
		storage:    storage,
		now:        time.Now,
	}
}

// MergeProfile combines the identity record with the profile document.
// Non-empty document values win; the photo always comes from the identity.
func MergeProfile(identity *entities.Identity, doc *entities.ProfileDocument) *entities.UserProfile {
	profile := &entities.UserProfile{
		ID:    identity.UID,
		Name:  firstNonEmpty(identity.DisplayName, entities.DefaultDisplayName),
		Email: identity.Email,
		Phone: firstNonEmpty(identity.PhoneNumber, entities.PhoneNotProvided),
		Photo: identity.PhotoURL,
	}
	if doc == nil {
		return profile
	}

	profile.Name = firstNonEmpty(doc.Name, profile.Name)
	profile.Phone = firstNonEmpty(doc.Phone, profile.Phone)
	profile.BloodType = entities.BloodType(firstNonEmpty(string(doc.BloodType), string(profile.BloodType)))
	profile.DOB = firstNonEmpty(doc.DOB, profile.DOB)
	profile.LastDonated = firstNonEmpty(doc.LastDonated, profile.LastDonated)
	profile.Address = firstNonEmpty(doc.Address, profile.Address)
	profile.City = firstNonEmpty(doc.City, profile.City)
	return profile
}

// Load returns the merged profile of uid
func (s *ProfileService) Load(ctx context.Context, uid string) (*entities.UserProfile, error) {
	identity, err := s.identities.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	doc, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return MergeProfile(identity, doc), nil
}

// Save persists edit in order: photo upload, identity update, profile document
// update. The first failing stage aborts the rest and the caller only sees
// ProfileUpdateFailedMessage. The returned profile replaces the displayed one.
func (s *ProfileService) Save(ctx context.Context, uid string, edit entities.ProfileEdit, upload *ImageUpload) (*entities.UserProfile, error) {
	logger := observability.LoggerFromContext(ctx).With().Str("user_id", uid).Logger()

	if edit.BloodType != "" && !edit.BloodType.IsStandard() {
		logger.Warn().Str("blood_type", string(edit.BloodType)).Msg("Rejected unknown blood type")
		return nil, apperrors.NewValidationError(ProfileUpdateFailedMessage)
	}

	current, err := s.Load(ctx, uid)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load profile before save")
		return nil, apperrors.NewInternalError(ProfileUpdateFailedMessage, err)
	}

	photoURL := firstNonEmpty(edit.Photo, current.Photo)
	if upload != nil {
		key := ProfileImageKey(uid, upload.Filename, s.now())
		photoURL, err = s.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Failed to upload profile image")
			return nil, apperrors.NewInternalError(ProfileUpdateFailedMessage, err)
		}
	}

	if err := s.identities.UpdateProfile(ctx, uid, edit.Name, photoURL); err != nil {
		logger.Error().Err(err).Msg("Failed to update authentication profile")
		return nil, apperrors.NewInternalError(ProfileUpdateFailedMessage, err)
	}

	updatedAt := s.now().UTC()
	doc := &entities.ProfileDocument{
		UID:         uid,
		Name:        edit.Name,
		Phone:       edit.Phone,
		PhotoURL:    photoURL,
		BloodType:   edit.BloodType,
		DOB:         edit.DOB,
		LastDonated: edit.LastDonated,
		Address:     edit.Address,
		City:        edit.City,
		UpdatedAt:   &updatedAt,
	}
	if err := s.profiles.Update(ctx, doc); err != nil {
		logger.Error().Err(err).Msg("Failed to update user data in database")
		return nil, apperrors.NewInternalError(ProfileUpdateFailedMessage, err)
	}

	return &entities.UserProfile{
		ID:          current.ID,
		Name:        edit.Name,
		Email:       current.Email,
		Phone:       edit.Phone,
		Photo:       firstNonEmpty(photoURL, current.Photo),
		BloodType:   edit.BloodType,
		DOB:         edit.DOB,
		LastDonated: edit.LastDonated,
		Address:     edit.Address,
		City:        edit.City,
	}, nil
}

// ProfileImageKey is the object key of a profile photo uploaded at t
func ProfileImageKey(uid, filename string, t time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("profileImages/%s/profile_%d_%s", uid, t.UnixMilli(), name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
