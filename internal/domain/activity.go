package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType names a user-triggered event recorded in the activity log.
type ActivityType string

const (
	// ActivityLogin is recorded after a successful login.
	ActivityLogin ActivityType = "login"
	// ActivityRegistration is recorded when an account is created.
	ActivityRegistration ActivityType = "registration"
	// ActivityLogout is recorded when a session is explicitly destroyed.
	ActivityLogout ActivityType = "logout"
)

// Activity is an append-only audit record. Rows are written once and
// never updated or deleted.
type Activity struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        ActivityType
	Description string
	Metadata    map[string]string
	CreatedAt   time.Time
}
