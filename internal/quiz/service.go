package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// FlagTabSwitchThreshold is the tab-switch count at which an attempt is
// flagged as suspected cheating.
const FlagTabSwitchThreshold = 3

// Service orchestrates the attempt lifecycle: starting an exam exactly once
// per user inside the live window, resuming in-progress attempts, and scoring
// on submission.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates the attempt lifecycle service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Start begins or resumes the user's attempt at the quiz identified by slug.
//
// Outside [liveFrom, liveUntil] it fails with ErrPortalNotOpen or
// ErrPortalClosed. A terminal attempt fails with ErrAlreadyAttempted. An
// in-progress attempt resumes: no new row, deadline recomputed from the
// original started_at. Otherwise a new attempt is created optimistically;
// losing the creation race to a concurrent request is folded into the same
// resume path by re-reading the row that won, so every racing caller gets a
// consistent success response and exactly one row is ever persisted.
func (s *Service) Start(ctx context.Context, slug string, userID uuid.UUID, now time.Time) (*StartResult, error) {
	q, err := s.store.QuizBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if now.Before(q.LiveFrom) {
		return nil, ErrPortalNotOpen
	}
	if now.After(q.LiveUntil) {
		return nil, ErrPortalClosed
	}

	existing, err := s.store.AttemptFor(ctx, userID, q.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup attempt: %w", err)
	}
	if existing != nil {
		return s.resume(q, existing)
	}

	attempt := &models.Attempt{
		ID:        uuid.New(),
		QuizID:    q.ID,
		UserID:    userID,
		StartedAt: now,
		Answers:   map[string]string{},
	}
	err = s.store.CreateAttempt(ctx, attempt)
	if err == nil {
		s.logger.Info("attempt started",
			zap.String("quiz", slug),
			zap.String("user_id", userID.String()),
			zap.Time("deadline", q.DeadlineFor(now)))
		return &StartResult{
			Questions: publicQuestions(q),
			Deadline:  q.DeadlineFor(now),
			Resumed:   false,
		}, nil
	}
	if !errors.Is(err, ErrAttemptExists) {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	// Lost the creation race. The row that won is authoritative; respond as
	// a resume computed from its started_at.
	winner, err := s.store.AttemptFor(ctx, userID, q.ID)
	if err != nil {
		return nil, fmt.Errorf("reread attempt after conflict: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("attempt conflict but no row for user %s quiz %s", userID, q.ID)
	}
	return s.resume(q, winner)
}

func (s *Service) resume(q *models.Quiz, a *models.Attempt) (*StartResult, error) {
	if a.Submitted() {
		return nil, ErrAlreadyAttempted
	}
	return &StartResult{
		Questions: publicQuestions(q),
		Deadline:  q.DeadlineFor(a.StartedAt),
		Resumed:   true,
	}, nil
}

// Submit scores and finalizes the user's in-progress attempt. The terminal
// check is re-validated inside the same guarded write that performs the
// mutation, so exactly one submit ever wins; later calls fail with
// ErrAlreadySubmitted rather than being silently accepted.
func (s *Service) Submit(ctx context.Context, slug string, userID uuid.UUID, answers map[string]string, tabSwitches int, now time.Time) (int, error) {
	q, err := s.store.QuizBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}

	attempt, err := s.store.AttemptFor(ctx, userID, q.ID)
	if err != nil {
		return 0, fmt.Errorf("lookup attempt: %w", err)
	}
	if attempt == nil {
		return 0, ErrNoActiveAttempt
	}
	if attempt.Submitted() {
		return 0, ErrAlreadySubmitted
	}

	// Late submissions are accepted and scored: the deadline is enforced by
	// the client runner's auto-submit, and a slow network on that final
	// request must not cost the participant their answers. Lateness is
	// logged for the admin review trail.
	if deadline := q.DeadlineFor(attempt.StartedAt); now.After(deadline) {
		s.logger.Warn("late submission accepted",
			zap.String("quiz", slug),
			zap.String("user_id", userID.String()),
			zap.Duration("late_by", now.Sub(deadline)))
	}

	if answers == nil {
		answers = map[string]string{}
	}
	score := scoreAnswers(q.Questions, answers)
	flagged := tabSwitches >= FlagTabSwitchThreshold

	updated, err := s.store.FinalizeAttempt(ctx, userID, q.ID, answers, score, tabSwitches, flagged, now)
	if err != nil {
		return 0, fmt.Errorf("finalize attempt: %w", err)
	}
	if !updated {
		// A concurrent submit won the guarded write.
		return 0, ErrAlreadySubmitted
	}

	s.logger.Info("attempt submitted",
		zap.String("quiz", slug),
		zap.String("user_id", userID.String()),
		zap.Int("score", score),
		zap.Int("tab_switches", tabSwitches),
		zap.Bool("flagged", flagged))
	return score, nil
}

// scoreAnswers counts questions whose submitted answer matches the stored
// correct answer. Lookup is by question id; both sides are trimmed of
// surrounding whitespace before the exact compare. Unanswered questions and
// ids not present in the quiz contribute nothing.
func scoreAnswers(questions []models.Question, answers map[string]string) int {
	score := 0
	for _, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(ans); trimmed != "" && trimmed == strings.TrimSpace(q.CorrectAnswer) {
			score++
		}
	}
	return score
}

func publicQuestions(q *models.Quiz) []models.QuestionPublic {
	out := make([]models.QuestionPublic, 0, len(q.Questions))
	for _, question := range q.Questions {
		out = append(out, question.ToPublic())
	}
	return out
}
