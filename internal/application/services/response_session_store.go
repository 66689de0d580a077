package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

// ResponseSessionStore keeps one response flow session per user in the cache
type ResponseSessionStore struct {
	cache providers.CacheProvider
	ttl   time.Duration
}

// NewResponseSessionStore creates a session store. Sessions expire ttl after
// their last change.
func NewResponseSessionStore(cache providers.CacheProvider, ttl time.Duration) *ResponseSessionStore {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &ResponseSessionStore{cache: cache, ttl: ttl}
}

func responseSessionKey(userID string) string {
	return fmt.Sprintf("response:session:%s", userID)
}

// Load returns the user's session, or a fresh one positioned on the list
func (s *ResponseSessionStore) Load(ctx context.Context, userID string) (*entities.ResponseSession, error) {
	data, err := s.cache.Get(ctx, responseSessionKey(userID))
	if errors.Is(err, providers.ErrCacheMiss) {
		return entities.NewResponseSession(userID), nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load response session", err)
	}

	var session entities.ResponseSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.NewInternalError("failed to decode response session", err)
	}
	return &session, nil
}

// Save stores the session and refreshes its expiry
func (s *ResponseSessionStore) Save(ctx context.Context, session *entities.ResponseSession) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to encode response session", err)
	}
	if err := s.cache.Set(ctx, responseSessionKey(session.UserID), data, s.ttl); err != nil {
		return apperrors.NewInternalError("failed to save response session", err)
	}
	return nil
}
