package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

// ErrRedisUnavailable wraps transport-level Redis failures so callers can
// tell infrastructure outages apart from a plain cache miss.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultTTL is the fixed session lifetime. Expiry is absolute from
// creation, not sliding.
const DefaultTTL = 24 * time.Hour

const sessionIDBytes = 32

// Store is a Redis-backed session store. Session ids are opaque to every
// other component; only this package interprets them.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace; a zero ttl falls back to
// [DefaultTTL].
func NewStore(redis redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func newSessionID() (string, error) {
	raw := make([]byte, sessionIDBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Create allocates a new session bound to userID and persists it before
// returning. The returned id is only valid once the write succeeded; a
// failed write surfaces as an error so the caller never hands the client
// a cookie pointing at nothing.
func (s *Store) Create(ctx context.Context, userID string, role domain.Role) (string, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess := &Session{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	data, err := Encode(sess)
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return sessionID, nil
}

// Get resolves a session id. Missing, destroyed, and expired sessions all
// come back as [domain.ErrSessionNotFound]; an expired record is also
// deleted on the way out.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.SessionID = sessionID

	if sess.ExpiresAt <= time.Now().Unix() {
		if err := s.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionNotFound
	}

	return sess, nil
}

// Delete destroys a session. Deleting a missing or already-destroyed
// session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTL exposes the configured session lifetime, used by the HTTP layer to
// align the cookie's MaxAge with the store's expiry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
