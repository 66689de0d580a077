package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
)

const defaultDonationHistoryLimit = 50

// DonationService keeps the donation history of each user
type DonationService struct {
	repo    repositories.DonationRepository
	metrics *observability.Metrics
}

var _ providers.DonationListener = (*DonationService)(nil)

// NewDonationService creates a new donation service
func NewDonationService(repo repositories.DonationRepository, metrics *observability.Metrics) *DonationService {
	return &DonationService{repo: repo, metrics: metrics}
}

// OnDonationConfirmed stores the confirmed donation in the user's history.
// The callback payload carries the request ID as its ID; history rows get
// their own ID and keep the request in RequestID.
func (s *DonationService) OnDonationConfirmed(ctx context.Context, userID string, record entities.DonationRecord) error {
	if record.RequestID == "" {
		record.RequestID = record.ID
	}
	record.ID = uuid.New().String()
	record.UserID = userID
	if err := s.repo.Create(ctx, &record); err != nil {
		return err
	}

	if s.metrics != nil {
		observability.RecordCount(ctx, s.metrics.Donations)
	}
	log.Info().Str("user_id", userID).Str("request_id", record.RequestID).Msg("Donation recorded")
	return nil
}

// History lists a user's donations, newest first
func (s *DonationService) History(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error) {
	if limit <= 0 || limit > defaultDonationHistoryLimit {
		limit = defaultDonationHistoryLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
