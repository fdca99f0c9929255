package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is one multiple-choice question in a quiz. CorrectAnswer is
// stored server-side only and must never be serialized to participants.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionPublic is the participant-facing view of a question.
type QuestionPublic struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// ToPublic strips the correct answer for client delivery.
func (q Question) ToPublic() QuestionPublic {
	return QuestionPublic{ID: q.ID, Text: q.Text, Options: q.Options}
}

// Quiz defines a prelims quiz: the portal window, per-attempt duration and
// the question bank. Immutable while the window is live.
type Quiz struct {
	ID              uuid.UUID  `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	LiveFrom        time.Time  `json:"live_from"`
	LiveUntil       time.Time  `json:"live_until"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DeadlineFor computes the submit deadline for an attempt started at the
// given instant: the personal duration allowance, capped by the portal's
// hard close.
func (q *Quiz) DeadlineFor(startedAt time.Time) time.Time {
	byDuration := startedAt.Add(time.Duration(q.DurationMinutes) * time.Minute)
	if q.LiveUntil.Before(byDuration) {
		return q.LiveUntil
	}
	return byDuration
}

// QuizSummary is the exam-list view: schedule metadata with the question
// bank excluded.
type QuizSummary struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	LiveFrom        time.Time `json:"live_from"`
	LiveUntil       time.Time `json:"live_until"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Attempt is one user's single try at one quiz. At most one row exists per
// (user, quiz) pair; the uniqueness is a storage constraint. SubmittedAt nil
// means in progress; once set the row is terminal.
type Attempt struct {
	ID          uuid.UUID         `json:"id"`
	QuizID      uuid.UUID         `json:"quiz_id"`
	UserID      uuid.UUID         `json:"user_id"`
	StartedAt   time.Time         `json:"started_at"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"`
	Score       int               `json:"score"`
	TabSwitches int               `json:"tab_switches"`
	IsFlagged   bool              `json:"is_flagged"`
}

// Submitted reports whether the attempt is terminal.
func (a *Attempt) Submitted() bool { return a.SubmittedAt != nil }

// AttemptSummary is the participant dashboard view of an attempt, answers
// excluded.
type AttemptSummary struct {
	ID          uuid.UUID  `json:"id"`
	QuizID      uuid.UUID  `json:"quiz_id"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Score       int        `json:"score"`
	TabSwitches int        `json:"tab_switches"`
	IsFlagged   bool       `json:"is_flagged"`
}
