package handlers_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/raksetu/bloodhub/internal/api/middleware"
	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
)

type MockEmergencyBrowser struct {
	mock.Mock
}

func (m *MockEmergencyBrowser) List(ctx context.Context, params services.EmergencyListParams) (*services.EmergencyListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EmergencyListResult), args.Error(1)
}

func (m *MockEmergencyBrowser) Create(ctx context.Context, req *entities.EmergencyRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockProfileEditor struct {
	mock.Mock
}

func (m *MockProfileEditor) Load(ctx context.Context, uid string) (*entities.UserProfile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockProfileEditor) Save(ctx context.Context, uid string, edit entities.ProfileEdit, upload *services.ImageUpload) (*entities.UserProfile, error) {
	args := m.Called(ctx, uid, edit, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

type MockResponseFlow struct {
	mock.Mock
}

func (m *MockResponseFlow) snapshot(args mock.Arguments) (*services.ResponseSnapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResponseSnapshot), args.Error(1)
}

func (m *MockResponseFlow) Current(ctx context.Context, userID string) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID))
}

func (m *MockResponseFlow) Select(ctx context.Context, userID, emergencyID string, viewer *entities.UserProfile) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, emergencyID, viewer))
}

func (m *MockResponseFlow) Back(ctx context.Context, userID string) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID))
}

func (m *MockResponseFlow) Respond(ctx context.Context, userID string, loc *entities.UserLocation) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, loc))
}

func (m *MockResponseFlow) ConfirmDonation(ctx context.Context, userID string, viewer *entities.UserProfile) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, viewer))
}

func (m *MockResponseFlow) RespondBySMS(ctx context.Context, userID string) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID))
}

func (m *MockResponseFlow) SendChatMessage(ctx context.Context, userID, text string) (*services.ResponseSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, text))
}

type MockDonationHistory struct {
	mock.Mock
}

func (m *MockDonationHistory) History(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DonationRecord), args.Error(1)
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}
