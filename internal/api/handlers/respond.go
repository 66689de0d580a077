package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/api/middleware"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// Helper functions

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. Internal
// causes are logged, never sent to the client.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		observability.RecordError(r.Context(), err)
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := appErr.Type.HTTPStatus()
	if status >= http.StatusInternalServerError {
		observability.RecordError(r.Context(), err)
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	respondWithError(w, status, appErr.Message)
}

// requireUser returns the authenticated user ID or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// parseLocation reads lat/lng query parameters. Both absent means no location.
func parseLocation(query url.Values) (*entities.UserLocation, error) {
	latStr, lngStr := query.Get("lat"), query.Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, apperrors.NewValidationError("invalid latitude parameter")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, apperrors.NewValidationError("invalid longitude parameter")
	}

	return &entities.UserLocation{Lat: lat, Lng: lng}, nil
}
