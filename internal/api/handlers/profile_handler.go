package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
)

const maxProfileImageSize = 5 << 20

// ProfileEditor loads and saves the merged user profile
type ProfileEditor interface {
	ProfileReader
	Save(ctx context.Context, uid string, edit entities.ProfileEdit, upload *services.ImageUpload) (*entities.UserProfile, error)
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	service ProfileEditor
	now     func() time.Time
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service ProfileEditor) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		now:     time.Now,
	}
}

type profileResponse struct {
	Profile          *entities.UserProfile `json:"profile"`
	LastDonationText string                `json:"lastDonationText"`
	BloodTypes       []entities.BloodType  `json:"bloodTypes"`
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Load(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.response(profile))
}

// UpdateProfile handles PUT /api/profile. It accepts a JSON edit or a
// multipart form whose optional "photo" file replaces the profile photo.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var (
		edit   entities.ProfileEdit
		upload *services.ImageUpload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageSize+1<<20)
		if err := r.ParseMultipartForm(maxProfileImageSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(w, http.StatusRequestEntityTooLarge, "profile image is too large")
				return
			}
			respondWithError(w, http.StatusBadRequest, "invalid form data")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		edit = editFromForm(r)

		file, header, err := r.FormFile("photo")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			respondWithError(w, http.StatusBadRequest, "invalid photo upload")
			return
		default:
			defer file.Close()
			contentType := header.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "image/") {
				respondWithError(w, http.StatusBadRequest, "photo must be an image")
				return
			}
			if header.Size > maxProfileImageSize {
				respondWithError(w, http.StatusRequestEntityTooLarge, "profile image is too large")
				return
			}
			upload = &services.ImageUpload{
				Filename:    header.Filename,
				ContentType: contentType,
				Size:        header.Size,
				Body:        file,
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.Save(r.Context(), userID, edit, upload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.response(profile))
}

func (h *ProfileHandler) response(profile *entities.UserProfile) profileResponse {
	return profileResponse{
		Profile:          profile,
		LastDonationText: profile.LastDonationText(h.now()),
		BloodTypes:       entities.StandardBloodTypes,
	}
}

func editFromForm(r *http.Request) entities.ProfileEdit {
	return entities.ProfileEdit{
		Name:        r.FormValue("name"),
		Phone:       r.FormValue("phone"),
		Photo:       r.FormValue("photo"),
		BloodType:   entities.BloodType(r.FormValue("bloodType")),
		DOB:         r.FormValue("dob"),
		LastDonated: r.FormValue("lastDonated"),
		Address:     r.FormValue("address"),
		City:        r.FormValue("city"),
	}
}
