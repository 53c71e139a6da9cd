package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"linkbuilding-service/internal/models"
)

// SessionTTL bounds how long an abandoned upload session survives.
const SessionTTL = 30 * time.Minute

// ErrSessionNotFound is returned for expired, discarded, or unknown sessions.
var ErrSessionNotFound = errors.New("upload session not found")

// SessionStore keeps upload sessions in Redis so any instance of the service
// can serve the next stage of the flow. When Redis is unavailable it degrades
// to a per-instance in-memory map, mirroring how the repositories treat their
// cache layer as optional.
type SessionStore struct {
	redis *redis.Client

	mu    sync.RWMutex
	local map[string]localSession
}

type localSession struct {
	session   *models.UploadSession
	expiresAt time.Time
}

// NewSessionStore creates a session store. redisClient may be nil.
func NewSessionStore(redisClient *redis.Client) *SessionStore {
	return &SessionStore{
		redis: redisClient,
		local: make(map[string]localSession),
	}
}

func sessionKey(tenantID, sessionID string) string {
	return fmt.Sprintf("linkbuilding:upload:%s:%s", tenantID, sessionID)
}

// Save persists the session with a fresh TTL.
func (s *SessionStore) Save(ctx context.Context, session *models.UploadSession) error {
	key := sessionKey(session.TenantID, session.ID)

	if s.redis != nil {
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		if err := s.redis.Set(ctx, key, data, SessionTTL).Err(); err == nil {
			return nil
		}
		// Fall through to the local map on Redis failure.
	}

	s.mu.Lock()
	s.local[key] = localSession{session: session, expiresAt: time.Now().Add(SessionTTL)}
	s.mu.Unlock()
	return nil
}

// Get loads a session, returning ErrSessionNotFound when it is gone.
func (s *SessionStore) Get(ctx context.Context, tenantID, sessionID string) (*models.UploadSession, error) {
	key := sessionKey(tenantID, sessionID)

	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var session models.UploadSession
			if err := json.Unmarshal([]byte(val), &session); err != nil {
				return nil, err
			}
			return &session, nil
		}
		if !errors.Is(err, redis.Nil) {
			// Redis unreachable; try the local map.
			return s.getLocal(key)
		}
	}

	return s.getLocal(key)
}

func (s *SessionStore) getLocal(key string) (*models.UploadSession, error) {
	s.mu.RLock()
	entry, ok := s.local[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete discards a session. Missing sessions are not an error: closing the
// upload flow twice is harmless.
func (s *SessionStore) Delete(ctx context.Context, tenantID, sessionID string) error {
	key := sessionKey(tenantID, sessionID)

	if s.redis != nil {
		_ = s.redis.Del(ctx, key).Err()
	}

	s.mu.Lock()
	delete(s.local, key)
	s.mu.Unlock()
	return nil
}
