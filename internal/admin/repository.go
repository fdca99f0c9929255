package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// SubmissionUser is the participant identity attached to a dashboard row.
type SubmissionUser struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
}

// SubmissionRow is one enriched attempt for the admin dashboard and CSV
// export: attempt joined with participant and quiz metadata.
type SubmissionRow struct {
	ID               uuid.UUID      `json:"id"`
	User             SubmissionUser `json:"user"`
	QuizSlug         string         `json:"quiz_slug"`
	QuizTitle        string         `json:"quiz_title"`
	Score            int            `json:"score"`
	TimeTakenSeconds float64        `json:"time_taken_seconds"`
	TabSwitches      int            `json:"tab_switches"`
	IsFlagged        bool           `json:"is_flagged"`
	StartedAt        time.Time      `json:"started_at"`
	SubmittedAt      *time.Time     `json:"submitted_at,omitempty"`
}

// Repository handles the admin dashboard queries and export records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSubmissions returns all attempts joined with user and quiz metadata,
// best score first. quizSlug filters to one quiz when non-empty.
func (r *Repository) ListSubmissions(ctx context.Context, quizSlug string) ([]SubmissionRow, error) {
	q := `SELECT a.id, u.name, u.email, u.roll_number, u.department,
			q.slug, q.title, a.score, a.tab_switches, a.is_flagged, a.started_at, a.submitted_at
		FROM attempts a
		JOIN users u ON u.id = a.user_id
		JOIN quizzes q ON q.id = a.quiz_id`
	args := []interface{}{}
	if quizSlug != "" {
		q += ` WHERE q.slug = $1`
		args = append(args, quizSlug)
	}
	q += ` ORDER BY a.score DESC, a.submitted_at ASC NULLS LAST`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []SubmissionRow
	for rows.Next() {
		var row SubmissionRow
		if err := rows.Scan(&row.ID, &row.User.Name, &row.User.Email, &row.User.RollNumber, &row.User.Department,
			&row.QuizSlug, &row.QuizTitle, &row.Score, &row.TabSwitches, &row.IsFlagged,
			&row.StartedAt, &row.SubmittedAt); err != nil {
			return nil, err
		}
		if row.SubmittedAt != nil {
			row.TimeTakenSeconds = row.SubmittedAt.Sub(row.StartedAt).Seconds()
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// CreateExport inserts a pending export record.
func (r *Repository) CreateExport(ctx context.Context, requestedBy uuid.UUID, quizSlug string) (*models.Export, error) {
	const q = `INSERT INTO exports (requested_by, quiz_slug)
		VALUES ($1, $2)
		RETURNING id, requested_by, quiz_slug, status, s3_key, row_count, error, created_at, completed_at`
	return scanExport(r.pool.QueryRow(ctx, q, requestedBy, quizSlug))
}

// GetExport returns an export by ID, or nil when not found.
func (r *Repository) GetExport(ctx context.Context, id uuid.UUID) (*models.Export, error) {
	const q = `SELECT id, requested_by, quiz_slug, status, s3_key, row_count, error, created_at, completed_at
		FROM exports WHERE id = $1`
	e, err := scanExport(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// CompleteExport marks the export as completed with the archive key.
func (r *Repository) CompleteExport(ctx context.Context, id uuid.UUID, s3Key string, rowCount int) error {
	const q = `UPDATE exports SET status = 'completed', s3_key = $1, row_count = $2, completed_at = NOW()
		WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, s3Key, rowCount, id)
	return err
}

// FailExport marks the export as failed with the error message.
func (r *Repository) FailExport(ctx context.Context, id uuid.UUID, msg string) error {
	const q = `UPDATE exports SET status = 'failed', error = $1, completed_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, msg, id)
	return err
}

func scanExport(row pgx.Row) (*models.Export, error) {
	var e models.Export
	err := row.Scan(&e.ID, &e.RequestedBy, &e.QuizSlug, &e.Status, &e.S3Key,
		&e.RowCount, &e.Error, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
