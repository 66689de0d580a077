package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
)

const activeEmergenciesCacheKey = "emergencies:active"

// CachedEmergencyAdapter wraps an EmergencyRepository with a short-lived cache
// of the active list. Every write drops the cached list.
type CachedEmergencyAdapter struct {
	adapter repositories.EmergencyRepository
	cache   providers.CacheProvider
	ttl     time.Duration
}

// NewCachedEmergencyAdapter creates a new cached emergency adapter
func NewCachedEmergencyAdapter(adapter repositories.EmergencyRepository, cache providers.CacheProvider, ttl time.Duration) repositories.EmergencyRepository {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &CachedEmergencyAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
	}
}

// ListActive returns the active list, served from cache when possible
func (a *CachedEmergencyAdapter) ListActive(ctx context.Context) ([]entities.EmergencyRequest, error) {
	cached, err := a.cache.Get(ctx, activeEmergenciesCacheKey)
	switch {
	case err == nil:
		var requests []entities.EmergencyRequest
		decodeErr := json.Unmarshal(cached, &requests)
		if decodeErr == nil {
			return requests, nil
		}
		log.Warn().Err(decodeErr).Msg("Failed to unmarshal cached emergency list")
	case !errors.Is(err, providers.ErrCacheMiss):
		log.Warn().Err(err).Msg("Emergency list cache unavailable, reading through")
	}

	requests, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(requests); err == nil {
		if err := a.cache.Set(ctx, activeEmergenciesCacheKey, data, a.ttl); err != nil {
			log.Warn().Err(err).Msg("Failed to cache emergency list")
		}
	}

	return requests, nil
}

// GetByID always reads through to the store
func (a *CachedEmergencyAdapter) GetByID(ctx context.Context, id string) (*entities.EmergencyRequest, error) {
	return a.adapter.GetByID(ctx, id)
}

// Create stores the request and invalidates the list cache
func (a *CachedEmergencyAdapter) Create(ctx context.Context, req *entities.EmergencyRequest) error {
	if err := a.adapter.Create(ctx, req); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// RecordDonorResponse records the response and invalidates the list cache
func (a *CachedEmergencyAdapter) RecordDonorResponse(ctx context.Context, id string, at time.Time) (*entities.DonorResponseResult, error) {
	result, err := a.adapter.RecordDonorResponse(ctx, id, at)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx)
	return result, nil
}

// Delete removes the request and invalidates the list cache
func (a *CachedEmergencyAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

func (a *CachedEmergencyAdapter) invalidate(ctx context.Context) {
	if err := a.cache.Delete(ctx, activeEmergenciesCacheKey); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate emergency list cache")
	}
}
