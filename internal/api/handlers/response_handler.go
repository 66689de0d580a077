package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// ResponseFlow drives a user's emergency response session
type ResponseFlow interface {
	Current(ctx context.Context, userID string) (*services.ResponseSnapshot, error)
	Select(ctx context.Context, userID, emergencyID string, viewer *entities.UserProfile) (*services.ResponseSnapshot, error)
	Back(ctx context.Context, userID string) (*services.ResponseSnapshot, error)
	Respond(ctx context.Context, userID string, loc *entities.UserLocation) (*services.ResponseSnapshot, error)
	ConfirmDonation(ctx context.Context, userID string, viewer *entities.UserProfile) (*services.ResponseSnapshot, error)
	RespondBySMS(ctx context.Context, userID string) (*services.ResponseSnapshot, error)
	SendChatMessage(ctx context.Context, userID, text string) (*services.ResponseSnapshot, error)
}

// ResponseHandler handles the response flow HTTP requests
type ResponseHandler struct {
	flow     ResponseFlow
	profiles ProfileReader
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(flow ResponseFlow, profiles ProfileReader) *ResponseHandler {
	return &ResponseHandler{
		flow:     flow,
		profiles: profiles,
	}
}

type selectRequest struct {
	EmergencyID string `json:"emergencyId"`
}

type respondRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type chatRequest struct {
	Text string `json:"text"`
}

// GetCurrent handles GET /api/responses/current
func (h *ResponseHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.write(w, r)(h.flow.Current(r.Context(), userID))
}

// Select handles POST /api/responses/select
func (h *ResponseHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body selectRequest
	if err := decodeJSON(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.EmergencyID == "" {
		respondWithError(w, http.StatusBadRequest, "emergencyId is required")
		return
	}

	viewer := loadViewer(r.Context(), h.profiles, userID)
	h.write(w, r)(h.flow.Select(r.Context(), userID, body.EmergencyID, viewer))
}

// Back handles POST /api/responses/back
func (h *ResponseHandler) Back(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.write(w, r)(h.flow.Back(r.Context(), userID))
}

// Respond handles POST /api/responses/respond. The body is optional.
func (h *ResponseHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body respondRequest
	if err := decodeJSON(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var loc *entities.UserLocation
	if body.Lat != nil && body.Lng != nil {
		loc = &entities.UserLocation{Lat: *body.Lat, Lng: *body.Lng}
	}

	h.write(w, r)(h.flow.Respond(r.Context(), userID, loc))
}

// Confirm handles POST /api/responses/confirm
func (h *ResponseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	viewer := loadViewer(r.Context(), h.profiles, userID)
	h.write(w, r)(h.flow.ConfirmDonation(r.Context(), userID, viewer))
}

// RespondBySMS handles POST /api/responses/sms
func (h *ResponseHandler) RespondBySMS(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.write(w, r)(h.flow.RespondBySMS(r.Context(), userID))
}

// Chat handles POST /api/responses/chat
func (h *ResponseHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body chatRequest
	if err := decodeJSON(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.write(w, r)(h.flow.SendChatMessage(r.Context(), userID, body.Text))
}

func (h *ResponseHandler) write(w http.ResponseWriter, r *http.Request) func(*services.ResponseSnapshot, error) {
	return func(snapshot *services.ResponseSnapshot, err error) {
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, snapshot)
	}
}

// decodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}
