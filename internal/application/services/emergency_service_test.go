package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

func newEmergencyService(repo *MockEmergencyRepository, bus *MockEventBus) *services.EmergencyService {
	cfg := services.EmergencyServiceConfig{
		RareBloodTypes:     defaultRare,
		NotificationWindow: 5 * time.Minute,
		BannerAnimation:    2 * time.Second,
	}
	if bus == nil {
		return services.NewEmergencyService(repo, nil, nil, cfg)
	}
	return services.NewEmergencyService(repo, bus, nil, cfg)
}

func TestEmergencyService_ListFiltersAndRaisesBanner(t *testing.T) {
	repo := new(MockEmergencyRepository)
	service := newEmergencyService(repo, nil)

	now := time.Now()
	requests := []entities.EmergencyRequest{
		{ID: "new", Hospital: "Fortis", Location: "Gurgaon", BloodType: "A+", Timestamp: ptrTime(now.Add(-time.Minute))},
		{ID: "old", Hospital: "AIIMS", Location: "New Delhi", BloodType: "O-", Timestamp: ptrTime(now.Add(-3 * time.Hour))},
	}
	repo.On("ListActive", mock.Anything).Return(requests, nil)

	result, err := service.List(context.Background(), services.EmergencyListParams{
		Filter: services.EmergencyFilter{BloodType: "O-"},
		Viewer: &entities.UserProfile{ID: "u1", BloodType: "A+"},
	})

	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "old", result.Emergencies[0].ID)
	assert.Equal(t, "3 hr ago", result.Emergencies[0].TimeAgo)
	require.NotNil(t, result.Notification)
	assert.Equal(t, "new", result.Notification.Request.ID)
}

func TestEmergencyService_DefaultSearchRadius(t *testing.T) {
	withRadius := func(km float64) *services.EmergencyService {
		return services.NewEmergencyService(new(MockEmergencyRepository), nil, nil, services.EmergencyServiceConfig{
			RareBloodTypes:      defaultRare,
			DefaultSearchRadius: km,
		})
	}
	ids := func(result *services.EmergencyListResult) []string {
		out := make([]string, 0, len(result.Emergencies))
		for _, d := range result.Emergencies {
			out = append(out, d.ID)
		}
		return out
	}

	t.Run("zero keeps the distance filter off", func(t *testing.T) {
		result := withRadius(0).Present(sampleRequests(), services.EmergencyListParams{Location: userAt})
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(result))
	})

	t.Run("applies when the client sends no distance", func(t *testing.T) {
		result := withRadius(10).Present(sampleRequests(), services.EmergencyListParams{Location: userAt})
		assert.Equal(t, []string{"1"}, ids(result))
	})

	t.Run("client distance wins", func(t *testing.T) {
		result := withRadius(10).Present(sampleRequests(), services.EmergencyListParams{
			Filter:   services.EmergencyFilter{MaxDistanceKm: ptrFloat(5000)},
			Location: userAt,
		})
		assert.Equal(t, []string{"1", "2"}, ids(result))
	})
}

func TestEmergencyService_ListError(t *testing.T) {
	repo := new(MockEmergencyRepository)
	service := newEmergencyService(repo, nil)
	repo.On("ListActive", mock.Anything).Return(nil, apperrors.NewInternalError("db", errors.New("down")))

	_, err := service.List(context.Background(), services.EmergencyListParams{})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestEmergencyService_CreateAssignsDefaultsAndPublishes(t *testing.T) {
	repo := new(MockEmergencyRepository)
	bus := new(MockEventBus)
	service := newEmergencyService(repo, bus)

	req := &entities.EmergencyRequest{
		Hospital:  "AIIMS",
		Location:  "New Delhi",
		BloodType: "O h",
		Urgency:   entities.UrgencyCritical,
	}
	repo.On("Create", mock.Anything, req).Return(nil)
	bus.On("Publish", mock.Anything, providers.EventChannelEmergencyUpdates, mock.MatchedBy(func(e *entities.EmergencyEvent) bool {
		return e.Type == entities.EmergencyEventCreated && e.RequestID == req.ID
	})).Return(nil)

	err := service.Create(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.NotNil(t, req.Timestamp)
	assert.Equal(t, 1, req.Units)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestEmergencyService_CreateValidates(t *testing.T) {
	repo := new(MockEmergencyRepository)
	service := newEmergencyService(repo, nil)

	err := service.Create(context.Background(), &entities.EmergencyRequest{Hospital: "AIIMS", Location: "Delhi", BloodType: "Z+", Urgency: entities.UrgencyCritical})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEmergencyService_RecordDonorResponsePublishes(t *testing.T) {
	tests := []struct {
		name   string
		result *entities.DonorResponseResult
		want   entities.EmergencyEventType
	}{
		{name: "below units stays active", result: &entities.DonorResponseResult{DonorsResponded: 1, Units: 2}, want: entities.EmergencyEventUpdated},
		{name: "reaching units fulfils", result: &entities.DonorResponseResult{DonorsResponded: 2, Units: 2, Fulfilled: true}, want: entities.EmergencyEventFulfilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockEmergencyRepository)
			bus := new(MockEventBus)
			service := newEmergencyService(repo, bus)
			req := &entities.EmergencyRequest{ID: "r1", Units: 2, DonorsResponded: tt.result.DonorsResponded - 1}
			at := time.Now()

			repo.On("RecordDonorResponse", mock.Anything, "r1", at).Return(tt.result, nil)
			bus.On("Publish", mock.Anything, providers.EventChannelEmergencyUpdates, mock.MatchedBy(func(e *entities.EmergencyEvent) bool {
				return e.Type == tt.want && e.Request.DonorsResponded == tt.result.DonorsResponded && e.Request.DonorResponseTime != nil
			})).Return(nil)

			got, err := service.RecordDonorResponse(context.Background(), req, at)

			require.NoError(t, err)
			assert.Equal(t, tt.result, got)
			assert.Equal(t, tt.result.DonorsResponded-1, req.DonorsResponded)
			bus.AssertExpectations(t)
		})
	}
}

func TestEmergencyService_PublishFailureIsIgnored(t *testing.T) {
	repo := new(MockEmergencyRepository)
	bus := new(MockEventBus)
	service := newEmergencyService(repo, bus)
	req := &entities.EmergencyRequest{Hospital: "AIIMS", Location: "Delhi", BloodType: "B+", Urgency: entities.UrgencyStandard, Units: 1}

	repo.On("Create", mock.Anything, req).Return(nil)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	assert.NoError(t, service.Create(context.Background(), req))
}
