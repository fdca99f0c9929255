package admin

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// csvHeader is the column order of a results export file.
var csvHeader = []string{
	"name", "email", "roll_number", "department",
	"quiz", "score", "time_taken_seconds", "tab_switches", "is_flagged",
	"started_at", "submitted_at",
}

// WriteCSV writes submission rows as CSV with a header line. Timestamps are
// RFC 3339 UTC; an in-progress attempt leaves submitted_at and time taken
// empty.
func WriteCSV(w io.Writer, rows []SubmissionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		submitted := ""
		taken := ""
		if row.SubmittedAt != nil {
			submitted = row.SubmittedAt.UTC().Format(time.RFC3339)
			taken = strconv.FormatFloat(row.TimeTakenSeconds, 'f', 0, 64)
		}
		rec := []string{
			row.User.Name, row.User.Email, row.User.RollNumber, row.User.Department,
			row.QuizSlug,
			strconv.Itoa(row.Score),
			taken,
			strconv.Itoa(row.TabSwitches),
			strconv.FormatBool(row.IsFlagged),
			row.StartedAt.UTC().Format(time.RFC3339),
			submitted,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
