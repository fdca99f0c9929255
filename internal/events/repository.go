package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles per-user event registrations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Register records the user's registration for an event. Registering twice
// is a no-op: the primary key on (user_id, event_name) absorbs duplicates.
// Returns true when a new registration was created.
func (r *Repository) Register(ctx context.Context, userID uuid.UUID, eventName string) (bool, error) {
	const q = `INSERT INTO user_events (user_id, event_name) VALUES ($1, $2)
		ON CONFLICT (user_id, event_name) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, userID, eventName)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsRegistered reports whether the user has registered for the event.
func (r *Repository) IsRegistered(ctx context.Context, userID uuid.UUID, eventName string) (bool, error) {
	const q = `SELECT 1 FROM user_events WHERE user_id = $1 AND event_name = $2`
	var one int
	err := r.pool.QueryRow(ctx, q, userID, eventName).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
