package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// Store is the persistence surface the lifecycle service depends on. The
// Postgres implementation lives in Repository; tests use an in-memory fake.
type Store interface {
	// QuizBySlug returns the quiz or ErrQuizNotFound.
	QuizBySlug(ctx context.Context, slug string) (*models.Quiz, error)

	// AttemptFor returns the attempt for (user, quiz), or nil when none exists.
	AttemptFor(ctx context.Context, userID, quizID uuid.UUID) (*models.Attempt, error)

	// CreateAttempt inserts a new in-progress attempt. When another request
	// already created the (user, quiz) row, it returns ErrAttemptExists
	// without inserting; the uniqueness decision is made atomically by the
	// storage layer, not by a prior read.
	CreateAttempt(ctx context.Context, a *models.Attempt) error

	// FinalizeAttempt transitions the attempt to terminal in a single guarded
	// write: the update only applies while submitted_at is still unset.
	// Returns false when no in-progress row matched (already terminal).
	FinalizeAttempt(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string, score, tabSwitches int, flagged bool, submittedAt time.Time) (bool, error)
}

// StartResult is the response of a successful start or resume.
type StartResult struct {
	Questions []models.QuestionPublic `json:"questions"`
	Deadline  time.Time               `json:"deadline"`
	Resumed   bool                    `json:"resumed"`
}
