package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

func TestReportServiceBuildRows(t *testing.T) {
	seed := seededSnapshot()
	seed.Logs = []models.HabitLog{
		completedLog("member", "read", "2026-05-01"),
		completedLog("member", "read", "2026-05-02"),
		completedLog("admin", "walk", "2026-05-01"),
	}
	now := time.Date(2026, time.May, 3, 12, 0, 0, 0, time.UTC)
	service := NewReportService(newStubChallengeStore(seed), time.UTC, func() time.Time { return now })

	rows, err := service.BuildRows(context.Background())
	if err != nil {
		t.Fatalf("BuildRows() unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if rows[0].UserID != "member" || rows[0].EarnedPoints != 20 || rows[0].Streak != 2 {
		t.Fatalf("unexpected leading row: %+v", rows[0])
	}
	if rows[1].Team != "Blue" || rows[1].MissedHabits != 3 {
		t.Fatalf("unexpected admin row: %+v", rows[1])
	}
}

func TestReportServiceBuildSummary(t *testing.T) {
	seed := seededSnapshot()
	seed.Logs = []models.HabitLog{
		completedLog("member", "read", "2026-05-02"),
		completedLog("admin", "walk", "2026-05-01"),
		{ID: "admin-read-2026-05-04", UserID: "admin", HabitID: "read", Date: "2026-05-04"},
	}
	now := time.Date(2026, time.May, 3, 12, 0, 0, 0, time.UTC)
	service := NewReportService(newStubChallengeStore(seed), time.UTC, func() time.Time { return now })

	summary, err := service.BuildSummary(context.Background())
	if err != nil {
		t.Fatalf("BuildSummary() unexpected error: %v", err)
	}
	if summary.TotalEntries != 2 || !summary.HasData || summary.DateFrom != "2026-05-01" || summary.DateTo != "2026-05-02" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Members != 2 || summary.Pot <= 0 {
		t.Fatalf("expected members and a positive pot, got %+v", summary)
	}
}

func TestReportServicePropagatesStoreErrors(t *testing.T) {
	store := newStubChallengeStore(seededSnapshot())
	store.fetchErr = errors.New("database locked")
	service := NewReportService(store, time.UTC, nil)

	if _, err := service.BuildRows(context.Background()); !errors.Is(err, store.fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestWriteReportCSV(t *testing.T) {
	var output bytes.Buffer
	rows := []ReportRow{{Name: "Ada", Email: "ada@example.com", Team: "Blue", EarnedPoints: 15, SavedSoFar: 10, CurrentDebt: 190, LostSoFar: 3.3333}}
	if err := WriteReportCSV(&output, rows); err != nil {
		t.Fatalf("WriteReportCSV() unexpected error: %v", err)
	}

	records, err := csv.NewReader(&output).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 2 || len(records[0]) != len(ReportCSVHeaders) {
		t.Fatalf("unexpected csv shape: %v", records)
	}
	if records[1][0] != "Ada" || records[1][3] != "15" || records[1][9] != "3.33" {
		t.Fatalf("unexpected csv row: %v", records[1])
	}
}
