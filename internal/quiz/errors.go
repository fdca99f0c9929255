package quiz

import "errors"

var (
	// ErrQuizNotFound is returned when no quiz matches the slug.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrPortalNotOpen is returned when the portal window has not started.
	ErrPortalNotOpen = errors.New("portal not open yet")
	// ErrPortalClosed is returned when the portal window has ended.
	ErrPortalClosed = errors.New("portal closed")
	// ErrAlreadyAttempted is returned when a terminal attempt already exists for (user, quiz).
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrNoActiveAttempt is returned on submit when no attempt exists for (user, quiz).
	ErrNoActiveAttempt = errors.New("no active attempt found")
	// ErrAlreadySubmitted is returned when submitting an attempt that is already terminal.
	ErrAlreadySubmitted = errors.New("attempt already submitted")

	// ErrAttemptExists is the tagged result of losing the attempt-creation
	// race: the storage-level unique constraint rejected a duplicate
	// (user, quiz) insert. The service recovers by re-reading the winning
	// row; it never crosses the HTTP boundary as an error.
	ErrAttemptExists = errors.New("attempt already exists")
)
