package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

var (
	// ErrTeamNotFound is returned when no team matches the join code.
	ErrTeamNotFound = errors.New("invalid team code")
	// ErrTeamFull is returned when the team already has the maximum members.
	ErrTeamFull = errors.New("team is full")
	// ErrAlreadyInEvent is returned when the user is already registered for the event.
	ErrAlreadyInEvent = errors.New("already registered for this event")
)

// Repository handles team persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a teams repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a team with the creator as leader and first member, and
// registers the creator for the team's event. All writes share one
// transaction so a failure leaves nothing behind.
func (r *Repository) Create(ctx context.Context, team *models.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	registered, err := isRegistered(ctx, tx, team.LeaderID, team.EventName)
	if err != nil {
		return err
	}
	if registered {
		return ErrAlreadyInEvent
	}

	const insertTeam = `INSERT INTO teams (name, team_code, event_name, leader_id)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertTeam, team.Name, team.TeamCode, team.EventName, team.LeaderID).
		Scan(&team.ID, &team.CreatedAt); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	if err := addMember(ctx, tx, team.ID, team.LeaderID, team.EventName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Join adds the user to the team identified by joinCode, enforcing the
// member limit, and registers them for the team's event.
func (r *Repository) Join(ctx context.Context, joinCode string, userID uuid.UUID) (*models.Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const findTeam = `SELECT id, name, team_code, event_name, leader_id, created_at
		FROM teams WHERE team_code = $1 FOR UPDATE`
	var team models.Team
	err = tx.QueryRow(ctx, findTeam, joinCode).
		Scan(&team.ID, &team.Name, &team.TeamCode, &team.EventName, &team.LeaderID, &team.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}

	registered, err := isRegistered(ctx, tx, userID, team.EventName)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, ErrAlreadyInEvent
	}

	var memberCount int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1`, team.ID).Scan(&memberCount); err != nil {
		return nil, err
	}
	if memberCount >= models.MaxTeamSize {
		return nil, ErrTeamFull
	}

	if err := addMember(ctx, tx, team.ID, userID, team.EventName); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &team, nil
}

// TeamOf returns the team the user belongs to with member profiles, or nil.
func (r *Repository) TeamOf(ctx context.Context, userID uuid.UUID) (*models.TeamDetail, error) {
	const q = `SELECT t.id, t.name, t.team_code, t.event_name, t.leader_id, t.created_at
		FROM teams t JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1`
	var d models.TeamDetail
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&d.ID, &d.Name, &d.TeamCode, &d.EventName, &d.LeaderID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	members, err := r.membersOf(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Members = members
	return &d, nil
}

// ListAll returns every team with member profiles, newest first, for the
// admin overview.
func (r *Repository) ListAll(ctx context.Context) ([]models.TeamDetail, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, team_code, event_name, leader_id, created_at
		FROM teams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TeamDetail
	for rows.Next() {
		var d models.TeamDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.TeamCode, &d.EventName, &d.LeaderID, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range list {
		members, err := r.membersOf(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].Members = members
	}
	return list, nil
}

func (r *Repository) membersOf(ctx context.Context, teamID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT u.id, u.name, u.email, u.roll_number, u.department, u.role, u.team_id, u.created_at
		FROM users u JOIN team_members m ON m.user_id = u.id
		WHERE m.team_id = $1 ORDER BY m.joined_at`
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.RollNumber, &u.Department, &u.Role, &u.TeamID, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func isRegistered(ctx context.Context, tx pgx.Tx, userID uuid.UUID, eventName string) (bool, error) {
	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM user_events WHERE user_id = $1 AND event_name = $2`, userID, eventName).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func addMember(ctx context.Context, tx pgx.Tx, teamID, userID uuid.UUID, eventName string) error {
	if _, err := tx.Exec(ctx, `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, teamID, userID); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = $2`, teamID, userID); err != nil {
		return fmt.Errorf("update user team: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_events (user_id, event_name) VALUES ($1, $2)
		ON CONFLICT (user_id, event_name) DO NOTHING`, userID, eventName); err != nil {
		return fmt.Errorf("register event: %w", err)
	}
	return nil
}
