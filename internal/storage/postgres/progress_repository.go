package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

// ProgressRepository reads per-user gamification state. The row itself is
// created alongside the user by [UserRepository.Create].
type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// FindByUserID retrieves the progress record for a user.
func (r *ProgressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	query := `
		SELECT user_id, total_games_played, total_quizzes_taken, total_journal_entries,
		       total_points, current_streak, longest_streak, level,
		       game_stats, achievements, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1`

	progress := &domain.UserProgress{}
	var gameStats, achievements []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&progress.UserID, &progress.TotalGamesPlayed, &progress.TotalQuizzesTaken,
		&progress.TotalJournalEntries, &progress.TotalPoints, &progress.CurrentStreak,
		&progress.LongestStreak, &progress.Level, &gameStats, &achievements,
		&progress.CreatedAt, &progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}

	if err := json.Unmarshal(gameStats, &progress.GameStats); err != nil {
		return nil, fmt.Errorf("decode game stats: %w", err)
	}
	if err := json.Unmarshal(achievements, &progress.Achievements); err != nil {
		return nil, fmt.Errorf("decode achievements: %w", err)
	}

	return progress, nil
}
