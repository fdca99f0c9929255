package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus tracks the lifecycle of a results export job.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// Export is an admin-requested CSV export of quiz submissions. The worker
// builds the file and uploads it to S3; S3Key empty on a completed row means
// the archive store was disabled.
type Export struct {
	ID          uuid.UUID    `json:"id"`
	RequestedBy uuid.UUID    `json:"requested_by"`
	QuizSlug    string       `json:"quiz_slug,omitempty"` // empty = all quizzes
	Status      ExportStatus `json:"status"`
	S3Key       string       `json:"s3_key,omitempty"`
	RowCount    int          `json:"row_count"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
