package session

import "github.com/mindwell-hq/mindwell/internal/domain"

// Session is the server-side record bound to an opaque client-held id.
//
// Timestamps are unix seconds. ExpiresAt is absolute: the record is dead
// past it even if the Redis key somehow outlives its TTL.
type Session struct {
	SessionID string
	UserID    string
	Role      domain.Role

	CreatedAt int64
	ExpiresAt int64
}
