package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// EmergencyBrowser lists and opens emergency requests
type EmergencyBrowser interface {
	List(ctx context.Context, params services.EmergencyListParams) (*services.EmergencyListResult, error)
	Create(ctx context.Context, req *entities.EmergencyRequest) error
}

// ProfileReader loads the merged profile of a user
type ProfileReader interface {
	Load(ctx context.Context, uid string) (*entities.UserProfile, error)
}

// EmergencyHandler handles emergency list HTTP requests
type EmergencyHandler struct {
	service  EmergencyBrowser
	profiles ProfileReader
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(service EmergencyBrowser, profiles ProfileReader) *EmergencyHandler {
	return &EmergencyHandler{
		service:  service,
		profiles: profiles,
	}
}

// ListEmergencies handles GET /api/emergencies
func (h *EmergencyHandler) ListEmergencies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	params.Viewer = loadViewer(r.Context(), h.profiles, userID)

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CreateEmergency handles POST /api/emergencies
func (h *EmergencyHandler) CreateEmergency(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req entities.EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.IsRare = false
	req.DistanceKm = nil
	req.DonorResponseTime = nil
	req.CreatedBy = userID

	if err := h.service.Create(r.Context(), &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, req)
}

func parseListParams(r *http.Request) (services.EmergencyListParams, error) {
	query := r.URL.Query()

	params := services.EmergencyListParams{
		Filter: services.EmergencyFilter{
			BloodType: entities.BloodType(query.Get("bloodType")),
			Query:     query.Get("q"),
		},
	}

	if raw := query.Get("maxDistanceKm"); raw != "" {
		maxDistance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, apperrors.NewValidationError("invalid maxDistanceKm parameter")
		}
		params.Filter.MaxDistanceKm = &maxDistance
	}

	loc, err := parseLocation(query)
	if err != nil {
		return params, err
	}
	params.Location = loc

	return params, nil
}

// loadViewer returns nil when the profile cannot be loaded. Browsing works
// without one, only the banner needs it.
func loadViewer(ctx context.Context, profiles ProfileReader, userID string) *entities.UserProfile {
	if profiles == nil {
		return nil
	}
	viewer, err := profiles.Load(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to load viewer profile")
		return nil
	}
	return viewer
}
