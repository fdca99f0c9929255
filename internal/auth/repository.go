package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, roll_number, department, password_hash, role, team_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.RollNumber, &u.Department,
		&u.Password, &u.Role, &u.TeamID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID, or nil when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByEmail returns a user by email, or nil when not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ExistsByEmailOrRoll reports whether a user with the email or roll number
// already exists.
func (r *Repository) ExistsByEmailOrRoll(ctx context.Context, email, rollNumber string) (bool, error) {
	const q = `SELECT 1 FROM users WHERE email = $1 OR roll_number = $2 LIMIT 1`
	var one int
	err := r.pool.QueryRow(ctx, q, email, rollNumber).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new user with the default role.
func (r *Repository) Create(ctx context.Context, name, email, rollNumber, department, passwordHash string) (*models.User, error) {
	const q = `INSERT INTO users (name, email, roll_number, department, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, name, email, rollNumber, department, passwordHash))
}

// RegisteredEvents returns the event names the user has registered for.
func (r *Repository) RegisteredEvents(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_name FROM user_events WHERE user_id = $1 ORDER BY registered_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		events = append(events, name)
	}
	return events, rows.Err()
}
