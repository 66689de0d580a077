package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

// DonationHistory lists confirmed donations
type DonationHistory interface {
	History(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error)
}

// DonationHandler handles donation history HTTP requests
type DonationHandler struct {
	service DonationHistory
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(service DonationHistory) *DonationHandler {
	return &DonationHandler{service: service}
}

// ListDonations handles GET /api/donations
func (h *DonationHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	donations, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"donations": donations,
		"count":     len(donations),
	})
}
