package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
)

// fakeStore is an in-memory Store. attempts is keyed by user+quiz; createErr
// forces CreateAttempt to fail, simulating a concurrent insert that won.
type fakeStore struct {
	quizzes   map[string]*models.Quiz
	attempts  map[string]*models.Attempt
	createErr error
}

func newFakeStore(quizzes ...*models.Quiz) *fakeStore {
	s := &fakeStore{
		quizzes:  make(map[string]*models.Quiz),
		attempts: make(map[string]*models.Attempt),
	}
	for _, q := range quizzes {
		s.quizzes[q.Slug] = q
	}
	return s
}

func attemptKey(userID, quizID uuid.UUID) string {
	return userID.String() + "/" + quizID.String()
}

func (s *fakeStore) QuizBySlug(_ context.Context, slug string) (*models.Quiz, error) {
	q, ok := s.quizzes[slug]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

func (s *fakeStore) AttemptFor(_ context.Context, userID, quizID uuid.UUID) (*models.Attempt, error) {
	a, ok := s.attempts[attemptKey(userID, quizID)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) CreateAttempt(_ context.Context, a *models.Attempt) error {
	if s.createErr != nil {
		return s.createErr
	}
	key := attemptKey(a.UserID, a.QuizID)
	if _, ok := s.attempts[key]; ok {
		return ErrAttemptExists
	}
	cp := *a
	s.attempts[key] = &cp
	return nil
}

func (s *fakeStore) FinalizeAttempt(_ context.Context, userID, quizID uuid.UUID, answers map[string]string, score, tabSwitches int, flagged bool, submittedAt time.Time) (bool, error) {
	a, ok := s.attempts[attemptKey(userID, quizID)]
	if !ok || a.SubmittedAt != nil {
		return false, nil
	}
	at := submittedAt
	a.SubmittedAt = &at
	a.Answers = answers
	a.Score = score
	a.TabSwitches = tabSwitches
	a.IsFlagged = flagged
	return true, nil
}

var testDay = time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

// testQuiz is live 20:00-21:00 with a 20 minute attempt duration.
func testQuiz() *models.Quiz {
	return &models.Quiz{
		ID:              uuid.New(),
		Slug:            "corporate-devs-prelims",
		Title:           "Corporate Devs Prelims",
		LiveFrom:        at(20, 0),
		LiveUntil:       at(21, 0),
		DurationMinutes: 20,
		Questions: []models.Question{
			{ID: "q1", Text: "Q1", Options: []string{"A", "B"}, CorrectAnswer: "A"},
			{ID: "q2", Text: "Q2", Options: []string{"B", "C"}, CorrectAnswer: "C"},
			{ID: "q3", Text: "Q3", Options: []string{"C", "D"}, CorrectAnswer: "D"},
		},
	}
}

func TestStartWindow(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before open", at(19, 59), ErrPortalNotOpen},
		{"at open", at(20, 0), nil},
		{"mid window", at(20, 30), nil},
		{"after close", at(21, 1), ErrPortalClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeStore(testQuiz()), nil)
			_, err := svc.Start(context.Background(), "corporate-devs-prelims", uuid.New(), tt.now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Start() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.Start(context.Background(), "no-such-quiz", uuid.New(), at(20, 30))
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("Start() err = %v, want ErrQuizNotFound", err)
	}
}

func TestStartDeadline(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"full duration fits", at(20, 10), at(20, 30)},
		{"capped by portal close", at(20, 50), at(21, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeStore(testQuiz()), nil)
			res, err := svc.Start(context.Background(), "corporate-devs-prelims", uuid.New(), tt.start)
			if err != nil {
				t.Fatalf("Start() err = %v", err)
			}
			if !res.Deadline.Equal(tt.want) {
				t.Errorf("deadline = %v, want %v", res.Deadline, tt.want)
			}
			if res.Resumed {
				t.Error("fresh start reported as resumed")
			}
		})
	}
}

func TestStartStripsCorrectAnswers(t *testing.T) {
	svc := NewService(newFakeStore(testQuiz()), nil)
	res, err := svc.Start(context.Background(), "corporate-devs-prelims", uuid.New(), at(20, 10))
	if err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	if len(res.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(res.Questions))
	}
	for _, q := range res.Questions {
		if q.ID == "" || q.Text == "" || len(q.Options) == 0 {
			t.Errorf("question %q missing public fields", q.ID)
		}
	}
}

func TestStartResumeKeepsOriginalDeadline(t *testing.T) {
	store := newFakeStore(testQuiz())
	svc := NewService(store, nil)
	userID := uuid.New()

	first, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10))
	if err != nil {
		t.Fatalf("first Start() err = %v", err)
	}
	second, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 25))
	if err != nil {
		t.Fatalf("second Start() err = %v", err)
	}
	if !second.Resumed {
		t.Error("second start not reported as resume")
	}
	if !second.Deadline.Equal(first.Deadline) {
		t.Errorf("resume deadline = %v, want original %v", second.Deadline, first.Deadline)
	}
	if len(store.attempts) != 1 {
		t.Errorf("got %d attempt rows, want 1", len(store.attempts))
	}
}

func TestStartAfterSubmitRejected(t *testing.T) {
	store := newFakeStore(testQuiz())
	svc := NewService(store, nil)
	userID := uuid.New()

	if _, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10)); err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	if _, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, nil, 0, at(20, 20)); err != nil {
		t.Fatalf("Submit() err = %v", err)
	}
	_, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 40))
	if !errors.Is(err, ErrAlreadyAttempted) {
		t.Fatalf("Start() after submit err = %v, want ErrAlreadyAttempted", err)
	}
}

func TestStartLostRaceResumesWinner(t *testing.T) {
	q := testQuiz()
	store := newFakeStore(q)
	userID := uuid.New()

	// Another request inserted the row between our lookup and create.
	winner := &models.Attempt{
		ID:        uuid.New(),
		QuizID:    q.ID,
		UserID:    userID,
		StartedAt: at(20, 10),
		Answers:   map[string]string{},
	}
	store.attempts[attemptKey(userID, q.ID)] = winner
	store.createErr = ErrAttemptExists

	svc := NewService(store, nil)
	res, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10))
	if err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	if !res.Resumed {
		t.Error("race loser not reported as resume")
	}
	if want := at(20, 30); !res.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v from winner started_at", res.Deadline, want)
	}
	if len(store.attempts) != 1 {
		t.Errorf("got %d attempt rows, want 1", len(store.attempts))
	}
}

func TestStartWrappedConflictResumesWinner(t *testing.T) {
	q := testQuiz()
	store := newFakeStore(q)
	userID := uuid.New()

	winner := &models.Attempt{
		ID:        uuid.New(),
		QuizID:    q.ID,
		UserID:    userID,
		StartedAt: at(20, 10),
		Answers:   map[string]string{},
	}
	store.attempts[attemptKey(userID, q.ID)] = winner
	// A store implementation may wrap the sentinel; the service must still
	// recognize it as a lost race, not a hard failure.
	store.createErr = fmt.Errorf("insert attempt: %w", ErrAttemptExists)

	svc := NewService(store, nil)
	res, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 12))
	if err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	if !res.Resumed {
		t.Error("wrapped conflict not folded into resume")
	}
	if want := at(20, 30); !res.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v from winner started_at", res.Deadline, want)
	}
}

func TestSubmitScoring(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		want    int
	}{
		{"all correct", map[string]string{"q1": "A", "q2": "C", "q3": "D"}, 3},
		{"wrong option no credit", map[string]string{"q1": "B", "q2": "C"}, 1},
		{"whitespace trimmed", map[string]string{"q1": " A ", "q2": "C"}, 2},
		{"empty answer no credit", map[string]string{"q1": "", "q2": "  "}, 0},
		{"unknown question id ignored", map[string]string{"q1": "A", "q99": "A"}, 1},
		{"nil answers", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(testQuiz())
			svc := NewService(store, nil)
			userID := uuid.New()
			if _, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10)); err != nil {
				t.Fatalf("Start() err = %v", err)
			}
			score, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, tt.answers, 0, at(20, 20))
			if err != nil {
				t.Fatalf("Submit() err = %v", err)
			}
			if score != tt.want {
				t.Errorf("score = %d, want %d", score, tt.want)
			}
		})
	}
}

func TestSubmitFlagsTabSwitches(t *testing.T) {
	tests := []struct {
		tabSwitches int
		wantFlagged bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{7, true},
	}
	for _, tt := range tests {
		store := newFakeStore(testQuiz())
		svc := NewService(store, nil)
		userID := uuid.New()
		if _, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10)); err != nil {
			t.Fatalf("Start() err = %v", err)
		}
		if _, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, nil, tt.tabSwitches, at(20, 20)); err != nil {
			t.Fatalf("Submit() err = %v", err)
		}
		a := store.attempts[attemptKey(userID, store.quizzes["corporate-devs-prelims"].ID)]
		if a.IsFlagged != tt.wantFlagged {
			t.Errorf("tabSwitches=%d flagged=%v, want %v", tt.tabSwitches, a.IsFlagged, tt.wantFlagged)
		}
	}
}

func TestSubmitWithoutStart(t *testing.T) {
	svc := NewService(newFakeStore(testQuiz()), nil)
	_, err := svc.Submit(context.Background(), "corporate-devs-prelims", uuid.New(), nil, 0, at(20, 20))
	if !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("Submit() err = %v, want ErrNoActiveAttempt", err)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	store := newFakeStore(testQuiz())
	svc := NewService(store, nil)
	userID := uuid.New()

	if _, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 10)); err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	if _, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, map[string]string{"q1": "A"}, 0, at(20, 15)); err != nil {
		t.Fatalf("first Submit() err = %v", err)
	}
	_, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, map[string]string{"q1": "A", "q2": "C"}, 0, at(20, 16))
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit() err = %v, want ErrAlreadySubmitted", err)
	}

	a := store.attempts[attemptKey(userID, store.quizzes["corporate-devs-prelims"].ID)]
	if a.Score != 1 {
		t.Errorf("score = %d, want first submission's 1", a.Score)
	}
}

func TestSubmitLateAccepted(t *testing.T) {
	store := newFakeStore(testQuiz())
	svc := NewService(store, nil)
	userID := uuid.New()

	// Start at 20:50; deadline capped to 21:00. The auto-submit arrives late.
	if _, err := svc.Start(context.Background(), "corporate-devs-prelims", userID, at(20, 50)); err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	score, err := svc.Submit(context.Background(), "corporate-devs-prelims", userID, map[string]string{"q1": "A"}, 1, at(21, 0).Add(30*time.Second))
	if err != nil {
		t.Fatalf("late Submit() err = %v", err)
	}
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}
}
