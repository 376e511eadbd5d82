package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

// ActivityRepository appends rows to the activity log. The log is
// write-once: no update or delete statements exist for it.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Append writes one activity record.
func (r *ActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO activities (id, user_id, type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		activity.ID, activity.UserID, activity.Type,
		activity.Description, metadata, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentByUser lists a user's newest activity records, most recent first.
func (r *ActivityRepository) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, description, metadata, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity := &domain.Activity{}
		var metadata []byte
		if err := rows.Scan(
			&activity.ID, &activity.UserID, &activity.Type,
			&activity.Description, &metadata, &activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if err := json.Unmarshal(metadata, &activity.Metadata); err != nil {
			return nil, fmt.Errorf("decode activity metadata: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}
