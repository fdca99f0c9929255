package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// Repository is the Postgres-backed Store plus the quiz catalog queries used
// by handlers and admin tooling.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a quiz repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// QuizBySlug returns the full quiz, question bank included.
func (r *Repository) QuizBySlug(ctx context.Context, slug string) (*models.Quiz, error) {
	const q = `SELECT id, slug, title, live_from, live_until, duration_minutes, questions, created_at
		FROM quizzes WHERE slug = $1`
	var quiz models.Quiz
	err := r.pool.QueryRow(ctx, q, slug).Scan(
		&quiz.ID, &quiz.Slug, &quiz.Title, &quiz.LiveFrom, &quiz.LiveUntil,
		&quiz.DurationMinutes, &quiz.Questions, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// AttemptFor returns the attempt for (user, quiz), or nil when none exists.
func (r *Repository) AttemptFor(ctx context.Context, userID, quizID uuid.UUID) (*models.Attempt, error) {
	const q = `SELECT id, quiz_id, user_id, started_at, submitted_at, answers, score, tab_switches, is_flagged
		FROM attempts WHERE user_id = $1 AND quiz_id = $2`
	var a models.Attempt
	err := r.pool.QueryRow(ctx, q, userID, quizID).Scan(
		&a.ID, &a.QuizID, &a.UserID, &a.StartedAt, &a.SubmittedAt,
		&a.Answers, &a.Score, &a.TabSwitches, &a.IsFlagged)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAttempt inserts the attempt. ON CONFLICT DO NOTHING makes the unique
// (user_id, quiz_id) index decide the race atomically: when another insert
// already won, no row comes back and ErrAttemptExists is returned.
func (r *Repository) CreateAttempt(ctx context.Context, a *models.Attempt) error {
	const q = `INSERT INTO attempts (id, quiz_id, user_id, started_at, answers)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, quiz_id) DO NOTHING
		RETURNING id`
	err := r.pool.QueryRow(ctx, q, a.ID, a.QuizID, a.UserID, a.StartedAt, a.Answers).Scan(&a.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAttemptExists
	}
	return err
}

// FinalizeAttempt performs the terminal transition. The submitted_at IS NULL
// guard re-validates the terminal check inside the write itself, so exactly
// one submit ever mutates the row.
func (r *Repository) FinalizeAttempt(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string, score, tabSwitches int, flagged bool, submittedAt time.Time) (bool, error) {
	const q = `UPDATE attempts
		SET answers = $1, score = $2, tab_switches = $3, is_flagged = $4, submitted_at = $5
		WHERE user_id = $6 AND quiz_id = $7 AND submitted_at IS NULL`
	tag, err := r.pool.Exec(ctx, q, answers, score, tabSwitches, flagged, submittedAt, userID, quizID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListQuizzes returns all quizzes as schedule summaries, questions excluded,
// earliest window first.
func (r *Repository) ListQuizzes(ctx context.Context) ([]models.QuizSummary, error) {
	const q = `SELECT id, slug, title, live_from, live_until, duration_minutes
		FROM quizzes ORDER BY live_from`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.QuizSummary
	for rows.Next() {
		var s models.QuizSummary
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.LiveFrom, &s.LiveUntil, &s.DurationMinutes); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// AttemptsByUser returns the user's attempts across all quizzes, answers
// excluded, for the participant dashboard.
func (r *Repository) AttemptsByUser(ctx context.Context, userID uuid.UUID) ([]models.AttemptSummary, error) {
	const q = `SELECT id, quiz_id, started_at, submitted_at, score, tab_switches, is_flagged
		FROM attempts WHERE user_id = $1 ORDER BY started_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttemptSummary
	for rows.Next() {
		var a models.AttemptSummary
		if err := rows.Scan(&a.ID, &a.QuizID, &a.StartedAt, &a.SubmittedAt, &a.Score, &a.TabSwitches, &a.IsFlagged); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateQuiz inserts a quiz definition (admin seeding).
func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	const q = `INSERT INTO quizzes (slug, title, live_from, live_until, duration_minutes, questions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, quiz.Slug, quiz.Title, quiz.LiveFrom, quiz.LiveUntil,
		quiz.DurationMinutes, quiz.Questions).Scan(&quiz.ID, &quiz.CreatedAt)
}
