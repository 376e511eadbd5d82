package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a user. The set is closed; every role-dependent branch
// must handle all values explicitly.
type Role string

const (
	// RoleMember is the default role assigned at registration.
	RoleMember Role = "member"
	// RoleAdmin grants access to the admin dashboard.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns the dashboard route a user with this role is
// redirected to after login. Unknown roles fall back to the member
// dashboard rather than failing the redirect.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleMember:
		return "/user/dashboard"
	default:
		return "/user/dashboard"
	}
}

// User is the identity record persisted by the credential store.
//
// Email is unique across all users and the password field only ever holds
// a bcrypt hash, never plaintext. LastActive stays nil until first login.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	LastActive   *time.Time
	CreatedAt    time.Time
}

// UserProgress holds per-user gamification state, created atomically with
// the owning user and zeroed at creation.
type UserProgress struct {
	UserID              uuid.UUID
	TotalGamesPlayed    int
	TotalQuizzesTaken   int
	TotalJournalEntries int
	TotalPoints         int
	CurrentStreak       int
	LongestStreak       int
	Level               string
	GameStats           map[string]any
	Achievements        []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUserProgress returns the zero-valued progress record for a freshly
// registered user.
func NewUserProgress(userID uuid.UUID, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:       userID,
		Level:        "beginner",
		GameStats:    map[string]any{},
		Achievements: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
