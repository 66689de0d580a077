package services_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

type MockEmergencyRepository struct {
	mock.Mock
}

func (m *MockEmergencyRepository) ListActive(ctx context.Context) ([]entities.EmergencyRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.EmergencyRequest), args.Error(1)
}

func (m *MockEmergencyRepository) GetByID(ctx context.Context, id string) (*entities.EmergencyRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EmergencyRequest), args.Error(1)
}

func (m *MockEmergencyRepository) Create(ctx context.Context, req *entities.EmergencyRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEmergencyRepository) RecordDonorResponse(ctx context.Context, id string, at time.Time) (*entities.DonorResponseResult, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DonorResponseResult), args.Error(1)
}

func (m *MockEmergencyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) Get(ctx context.Context, uid string) (*entities.Identity, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockIdentityRepository) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	args := m.Called(ctx, uid, displayName, photoURL)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, uid string) (*entities.ProfileDocument, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProfileDocument), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, doc *entities.ProfileDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, record *entities.DonationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDonationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DonationRecord), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, r, size, contentType)
	return args.String(0), args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	return args.Error(0)
}

type MockDonorEstimator struct {
	mock.Mock
}

func (m *MockDonorEstimator) Estimate(ctx context.Context, distanceKm float64) (entities.NearbyDonorsEstimate, error) {
	args := m.Called(ctx, distanceKm)
	return args.Get(0).(entities.NearbyDonorsEstimate), args.Error(1)
}

type MockDonationListener struct {
	mock.Mock
}

func (m *MockDonationListener) OnDonationConfirmed(ctx context.Context, userID string, record entities.DonationRecord) error {
	args := m.Called(ctx, userID, record)
	return args.Error(0)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.EmergencyEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type staticConnectivity bool

func (s staticConnectivity) Online(context.Context) bool { return bool(s) }

type instantSupport struct{}

func (instantSupport) Reply(_ context.Context, _ *entities.EmergencyRequest, _ entities.ChatMessage) (entities.ChatMessage, error) {
	return entities.ChatMessage{Text: "canned", Sender: entities.ChatSenderHospital, Timestamp: time.Now()}, nil
}

func ptrFloat(v float64) *float64 { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
