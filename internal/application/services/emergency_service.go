package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// EmergencyDetail is a request plus the presentation fields derived from it
type EmergencyDetail struct {
	entities.EmergencyRequest
	ImpactLevel   entities.ImpactLevel `json:"impactLevel"`
	TimeAgo       string               `json:"timeAgo"`
	DirectionsURL string               `json:"directionsUrl,omitempty"`
	ContactLabel  string               `json:"contactLabel"`
	// Compatibility is only set on the detail view of a response session
	Compatibility int `json:"compatibilityScore,omitempty"`
}

// NewEmergencyDetail derives the presentation fields of req at now
func NewEmergencyDetail(req entities.EmergencyRequest, now time.Time) EmergencyDetail {
	return EmergencyDetail{
		EmergencyRequest: req,
		ImpactLevel:      req.ImpactLevel(),
		TimeAgo:          req.TimeAgo(now),
		DirectionsURL:    req.DirectionsURL(),
		ContactLabel:     req.ContactNameOrDefault(),
	}
}

// EmergencyListParams are the inputs of one browse request
type EmergencyListParams struct {
	Filter   EmergencyFilter
	Location *entities.UserLocation
	Viewer   *entities.UserProfile
}

// EmergencyListResult is the filtered list plus the banner, if any
type EmergencyListResult struct {
	Emergencies  []EmergencyDetail `json:"emergencies"`
	Count        int               `json:"count"`
	Notification *entities.Banner  `json:"notification,omitempty"`
}

// EmergencyService handles browsing, creating and responding to emergency requests
type EmergencyService struct {
	repo          repositories.EmergencyRepository
	eventBus      providers.EventBus
	trigger       *NotificationTrigger
	rare          entities.RaritySet
	defaultRadius float64
	metrics       *observability.Metrics
	now           func() time.Time
}

// EmergencyServiceConfig carries the tunables of EmergencyService
type EmergencyServiceConfig struct {
	RareBloodTypes      entities.RaritySet
	DefaultSearchRadius float64
	NotificationWindow  time.Duration
	BannerAnimation     time.Duration
}

// NewEmergencyService creates a new emergency service. eventBus and metrics may be nil.
func NewEmergencyService(repo repositories.EmergencyRepository, eventBus providers.EventBus, metrics *observability.Metrics, cfg EmergencyServiceConfig) *EmergencyService {
	rare := cfg.RareBloodTypes
	if rare == nil {
		rare = entities.NewRaritySet(entities.DefaultRareBloodTypes)
	}
	return &EmergencyService{
		repo:          repo,
		eventBus:      eventBus,
		trigger:       NewNotificationTrigger(cfg.NotificationWindow, cfg.BannerAnimation),
		rare:          rare,
		defaultRadius: cfg.DefaultSearchRadius,
		metrics:       metrics,
		now:           time.Now,
	}
}

// List returns the filtered active requests and evaluates the banner against
// the unfiltered list
func (s *EmergencyService) List(ctx context.Context, params EmergencyListParams) (*EmergencyListResult, error) {
	requests, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.Present(requests, params), nil
}

// Present filters an already loaded list
func (s *EmergencyService) Present(requests []entities.EmergencyRequest, params EmergencyListParams) *EmergencyListResult {
	filter := params.Filter
	if filter.MaxDistanceKm == nil && s.defaultRadius > 0 {
		radius := s.defaultRadius
		filter.MaxDistanceKm = &radius
	}

	now := s.now()
	filtered := FilterEmergencies(requests, filter, params.Location, s.rare)
	details := make([]EmergencyDetail, 0, len(filtered))
	for _, req := range filtered {
		details = append(details, NewEmergencyDetail(req, now))
	}

	return &EmergencyListResult{
		Emergencies:  details,
		Count:        len(details),
		Notification: s.trigger.Evaluate(requests, params.Viewer, now),
	}
}

// Get retrieves one active request
func (s *EmergencyService) Get(ctx context.Context, id string) (*entities.EmergencyRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new request and announces it
func (s *EmergencyService) Create(ctx context.Context, req *entities.EmergencyRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Timestamp == nil {
		now := s.now().UTC()
		req.Timestamp = &now
	}
	if req.Units == 0 {
		req.Units = 1
	}
	if err := req.Validate(s.rare); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return err
	}

	s.publish(ctx, entities.NewEmergencyEvent(entities.EmergencyEventCreated, req))
	return nil
}

// RecordDonorResponse counts one more donor against req. Once the count meets
// the required units the store removes the request.
func (s *EmergencyService) RecordDonorResponse(ctx context.Context, req *entities.EmergencyRequest, at time.Time) (*entities.DonorResponseResult, error) {
	result, err := s.repo.RecordDonorResponse(ctx, req.ID, at)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		observability.RecordCount(ctx, s.metrics.DonorResponses)
	}

	updated := *req
	updated.DonorsResponded = result.DonorsResponded
	updated.Units = result.Units
	responseTime := at.UTC()
	updated.DonorResponseTime = &responseTime

	eventType := entities.EmergencyEventUpdated
	if result.Fulfilled {
		eventType = entities.EmergencyEventFulfilled
	}
	s.publish(ctx, entities.NewEmergencyEvent(eventType, &updated))

	return result, nil
}

func (s *EmergencyService) publish(ctx context.Context, event *entities.EmergencyEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelEmergencyUpdates, event); err != nil {
		log.Warn().Err(err).Str("request_id", event.RequestID).Str("type", string(event.Type)).Msg("Failed to publish emergency event")
	}
}
