package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

const pgUniqueViolation = "23505"

// UserRepository is the pgx-backed credential store.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, last_active, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.LastActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email. The lookup is case-sensitive,
// matching how emails are stored.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// FindByID retrieves a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// Create inserts the user and its zeroed progress record in a single
// transaction. The users_email_key unique constraint is the authority on
// email uniqueness: a concurrent duplicate that slips past the flow's
// pre-check still fails here with [domain.ErrEmailTaken], and the
// transaction leaves no orphan progress row behind.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, progress *domain.UserProgress) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, last_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.LastActive, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	gameStats, err := json.Marshal(progress.GameStats)
	if err != nil {
		return fmt.Errorf("encode game stats: %w", err)
	}
	achievements, err := json.Marshal(progress.Achievements)
	if err != nil {
		return fmt.Errorf("encode achievements: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_progress (
			user_id, total_games_played, total_quizzes_taken, total_journal_entries,
			total_points, current_streak, longest_streak, level,
			game_stats, achievements, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		progress.UserID, progress.TotalGamesPlayed, progress.TotalQuizzesTaken,
		progress.TotalJournalEntries, progress.TotalPoints, progress.CurrentStreak,
		progress.LongestStreak, progress.Level, gameStats, achievements,
		progress.CreatedAt, progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// UpdateLastActive stamps the user's last-active time.
func (r *UserRepository) UpdateLastActive(ctx context.Context, id uuid.UUID, ts time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE users SET last_active = $1 WHERE id = $2`, ts, id)
	if err != nil {
		return fmt.Errorf("update last active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
