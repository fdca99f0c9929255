package admin

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWriteCSV(t *testing.T) {
	started := time.Date(2026, 2, 7, 20, 10, 0, 0, time.UTC)
	submitted := started.Add(15 * time.Minute)

	rows := []SubmissionRow{
		{
			ID:               uuid.New(),
			User:             SubmissionUser{Name: "Asha Rao", Email: "asha@ju.ac.in", RollNumber: "002310501001", Department: "CSE"},
			QuizSlug:         "technokraft",
			QuizTitle:        "Technokraft Prelims",
			Score:            8,
			TimeTakenSeconds: 900,
			TabSwitches:      4,
			IsFlagged:        true,
			StartedAt:        started,
			SubmittedAt:      &submitted,
		},
		{
			ID:        uuid.New(),
			User:      SubmissionUser{Name: "Dev Sen", Email: "dev@ju.ac.in", RollNumber: "002310501002", Department: "EE"},
			QuizSlug:  "technokraft",
			Score:     0,
			StartedAt: started,
			// still in progress, no submitted_at
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() err = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "name" || records[0][8] != "is_flagged" {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != "Asha Rao" || first[5] != "8" || first[6] != "900" || first[8] != "true" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[10] != "2026-02-07T20:25:00Z" {
		t.Errorf("submitted_at = %q, want RFC3339 UTC", first[10])
	}

	second := records[2]
	if second[6] != "" || second[10] != "" {
		t.Errorf("in-progress row should leave time fields empty: %v", second)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() err = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want header only", len(records))
	}
}
