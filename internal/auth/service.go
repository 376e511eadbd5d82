// Package auth orchestrates registration, login, logout, and dashboard
// entry over the credential store, password hasher, session store, and
// activity recorder.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell-hq/mindwell/internal/activity"
	"github.com/mindwell-hq/mindwell/internal/domain"
	"github.com/mindwell-hq/mindwell/internal/metrics"
	"github.com/mindwell-hq/mindwell/internal/password"
	"github.com/mindwell-hq/mindwell/internal/session"
)

// MinPasswordLength is enforced here, at the flow boundary, not by the
// hasher.
const MinPasswordLength = 6

// sideEffectTimeout bounds the background last-active update dispatched
// after the login response is already decided.
const sideEffectTimeout = 5 * time.Second

// UserStore is the credential store slice the flows depend on.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User, progress *domain.UserProgress) error
	UpdateLastActive(ctx context.Context, id uuid.UUID, ts time.Time) error
}

// ProgressStore reads per-user gamification state for the dashboard.
type ProgressStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)
}

// ActivityFeed lists recent activity for the dashboard.
type ActivityFeed interface {
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Activity, error)
}

// SessionStore is the session manager slice the flows depend on.
type SessionStore interface {
	Create(ctx context.Context, userID string, role domain.Role) (string, error)
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service is the auth flow controller.
type Service struct {
	users      UserStore
	progress   ProgressStore
	activities ActivityFeed
	sessions   SessionStore
	recorder   *activity.Recorder
	hasher     password.Hasher
	log        *zap.Logger
	now        func() time.Time
}

// NewService wires the auth flows. A nil logger falls back to a no-op.
func NewService(
	users UserStore,
	progress ProgressStore,
	activities ActivityFeed,
	sessions SessionStore,
	recorder *activity.Recorder,
	hasher password.Hasher,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:      users,
		progress:   progress,
		activities: activities,
		sessions:   sessions,
		recorder:   recorder,
		hasher:     hasher,
		log:        log.Named("auth"),
		now:        time.Now,
	}
}

// RegisterInput carries the registration form fields plus request
// metadata for the activity record.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	ClientIP        string
}

// Register validates the input, creates the user together with its
// zeroed progress record, and writes the registration activity before
// returning. No session is created; the user logs in separately.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return domain.ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	// Friendly early check; the users_email_key constraint inside Create
	// remains the authority under concurrent duplicate submissions.
	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		metrics.RegistrationAttempts.WithLabelValues("conflict").Inc()
		return domain.ErrEmailTaken
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleMember,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user, domain.NewUserProgress(user.ID, now)); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationAttempts.WithLabelValues("conflict").Inc()
			return err
		}
		metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// Recorded synchronously, unlike login's. Still best-effort: a failed
	// record is logged, not surfaced, and never undoes the registration.
	err = s.recorder.RecordSync(ctx, activity.Event{
		UserID:      user.ID,
		Type:        domain.ActivityRegistration,
		Description: fmt.Sprintf("%s registered", user.Name),
		Metadata:    map[string]string{"ip_address": in.ClientIP},
		OccurredAt:  now,
	})
	if err != nil {
		s.log.Warn("registration activity record failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	metrics.RegistrationAttempts.WithLabelValues("success").Inc()
	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// LoginInput carries the login form fields plus request metadata.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResult is returned once a session is durably created.
type LoginResult struct {
	SessionID    string
	User         *domain.User
	RedirectPath string
}

// Login verifies credentials and establishes a session. An unknown email
// and a wrong password return the same error so the form cannot probe
// which emails are registered. The activity record and last-active stamp
// run in the background after the session write; the redirect never
// waits on them.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginAttempts.WithLabelValues("unauthorized").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("unauthorized").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, user.ID.String(), user.Role)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		s.log.Error("session create failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}

	now := s.now()
	s.recorder.Record(activity.Event{
		UserID:      user.ID,
		Type:        domain.ActivityLogin,
		Description: fmt.Sprintf("%s logged in", user.Name),
		Metadata:    map[string]string{"ip_address": in.ClientIP},
		OccurredAt:  now,
	})
	go s.touchLastActive(user.ID, now)

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{
		SessionID:    sessionID,
		User:         user,
		RedirectPath: user.Role.DashboardPath(),
	}, nil
}

// touchLastActive stamps last-active off the request path. Failure is
// logged and swallowed; the login outcome is already decided.
func (s *Service) touchLastActive(userID uuid.UUID, ts time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := s.users.UpdateLastActive(ctx, userID, ts); err != nil {
		s.log.Warn("last-active update failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// Logout destroys the session and always succeeds. Logging out an
// anonymous or already-destroyed session is a no-op; a resolvable user
// gets a best-effort last-active stamp and a logout activity record
// before the session goes away.
func (s *Service) Logout(ctx context.Context, sessionID, clientIP string) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		if userID, parseErr := uuid.Parse(sess.UserID); parseErr == nil {
			now := s.now()
			if err := s.users.UpdateLastActive(ctx, userID, now); err != nil {
				s.log.Warn("last-active update on logout failed",
					zap.String("user_id", sess.UserID), zap.Error(err))
			}
			s.recorder.Record(activity.Event{
				UserID:     userID,
				Type:       domain.ActivityLogout,
				Metadata:   map[string]string{"ip_address": clientIP},
				OccurredAt: now,
			})
		}
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn("session lookup on logout failed", zap.Error(err))
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.log.Warn("session destroy failed", zap.Error(err))
	}
}

// DashboardView is what dashboard entry resolves to: either a redirect
// (anonymous, stale, or admin sessions) or the member view data.
type DashboardView struct {
	RedirectPath string
	User         *domain.User
	Progress     *domain.UserProgress
	Recent       []*domain.Activity
}

// Dashboard resolves a session into the appropriate dashboard outcome.
// No session or a session for a vanished user redirects to the login
// page; admins are redirected to the admin dashboard; members get their
// view data, with a zero-valued progress default if none exists yet.
func (s *Service) Dashboard(ctx context.Context, sessionID string) (*DashboardView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return &DashboardView{RedirectPath: "/login"}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}

	userID, err := uuid.Parse(sess.UserID)
	if err != nil {
		return &DashboardView{RedirectPath: "/login"}, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Stale session for a deleted user.
			return &DashboardView{RedirectPath: "/login"}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	switch user.Role {
	case domain.RoleAdmin:
		return &DashboardView{RedirectPath: "/admin/dashboard", User: user}, nil
	case domain.RoleMember:
	default:
	}

	progress, err := s.progress.FindByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrProgressNotFound) {
			s.log.Warn("progress lookup failed",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		progress = domain.NewUserProgress(user.ID, s.now())
	}

	recent, err := s.activities.RecentByUser(ctx, user.ID, 10)
	if err != nil {
		s.log.Warn("recent activity lookup failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		recent = nil
	}

	return &DashboardView{User: user, Progress: progress, Recent: recent}, nil
}

// CurrentUser resolves the session's user, or [domain.ErrSessionNotFound]
// for anonymous and stale sessions. Route guards use it.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(sess.UserID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}
