package services

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var ReportCSVHeaders = []string{
	"User",
	"Email",
	"Team",
	"Points",
	"Today",
	"Streak",
	"Missed",
	"Saved",
	"Debt",
	"Lost",
}

type ReportSnapshotReader interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}

type ReportService struct {
	snapshots ReportSnapshotReader
	location  *time.Location
	now       func() time.Time
}

type ReportSummary struct {
	ChallengeName string  `json:"challenge_name"`
	Members       int     `json:"members"`
	TotalEntries  int     `json:"total_entries"`
	HasData       bool    `json:"has_data"`
	DateFrom      string  `json:"date_from"`
	DateTo        string  `json:"date_to"`
	Pot           float64 `json:"pot"`
}

type ReportRow struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Team         string  `json:"team"`
	EarnedPoints int     `json:"earned_points"`
	TodayPoints  int     `json:"today_points"`
	Streak       int     `json:"streak"`
	MissedHabits int     `json:"missed_habits"`
	SavedSoFar   float64 `json:"saved_so_far"`
	CurrentDebt  float64 `json:"current_debt"`
	LostSoFar    float64 `json:"lost_so_far"`
}

func NewReportService(snapshots ReportSnapshotReader, location *time.Location, now func() time.Time) *ReportService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ReportService{snapshots: snapshots, location: location, now: now}
}

// BuildRows returns one standing per user, ordered by earned points and then
// by name.
func (service *ReportService) BuildRows(ctx context.Context) ([]ReportRow, error) {
	snapshot, err := service.snapshots.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return service.rowsFor(snapshot)
}

func (service *ReportService) BuildSummary(ctx context.Context) (ReportSummary, error) {
	snapshot, err := service.snapshots.FetchSnapshot(ctx)
	if err != nil {
		return ReportSummary{}, err
	}
	rows, err := service.rowsFor(snapshot)
	if err != nil {
		return ReportSummary{}, err
	}

	summary := ReportSummary{ChallengeName: snapshot.Settings.Name, Members: len(rows)}
	for _, row := range rows {
		summary.Pot += row.LostSoFar
	}
	for _, logEntry := range snapshot.Logs {
		if !logEntry.Completed {
			continue
		}
		summary.TotalEntries++
		if summary.DateFrom == "" || logEntry.Date < summary.DateFrom {
			summary.DateFrom = logEntry.Date
		}
		if logEntry.Date > summary.DateTo {
			summary.DateTo = logEntry.Date
		}
	}
	summary.HasData = summary.TotalEntries > 0
	return summary, nil
}

func (service *ReportService) rowsFor(snapshot Snapshot) ([]ReportRow, error) {
	now := service.now().In(service.location)
	today := DateAtLocation(now, service.location)
	start, _, err := ChallengeBounds(snapshot.Settings.StartDate, snapshot.Settings.EndDate, service.location)
	if err != nil {
		return nil, err
	}

	index := NewCompletionIndex(snapshot.Logs)
	rows := make([]ReportRow, 0, len(snapshot.Users))
	for _, user := range snapshot.Users {
		finances, err := BuildFinancialSummary(FinancialInputFromSettings(snapshot.Settings, user, snapshot.Habits, index, now, service.location))
		if err != nil {
			return nil, err
		}
		row := ReportRow{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			EarnedPoints: finances.EarnedPoints,
			TodayPoints:  finances.TodayEarnedPoints,
			Streak:       Streak(user, snapshot.Habits, index, today, start),
			MissedHabits: finances.MissedHabitsCount,
			SavedSoFar:   finances.SavedSoFar,
			CurrentDebt:  finances.CurrentDebt,
			LostSoFar:    finances.LostSoFar,
			Team:         reportTeamName(snapshot.Teams, user),
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EarnedPoints != rows[j].EarnedPoints {
			return rows[i].EarnedPoints > rows[j].EarnedPoints
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

func (row ReportRow) Columns() []string {
	return []string{
		row.Name,
		row.Email,
		row.Team,
		strconv.Itoa(row.EarnedPoints),
		strconv.Itoa(row.TodayPoints),
		strconv.Itoa(row.Streak),
		strconv.Itoa(row.MissedHabits),
		csvMoney(row.SavedSoFar),
		csvMoney(row.CurrentDebt),
		csvMoney(row.LostSoFar),
	}
}

// WriteReportCSV writes the header line followed by one line per row.
func WriteReportCSV(output io.Writer, rows []ReportRow) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(ReportCSVHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvMoney(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func reportTeamName(teams []models.Team, user models.User) string {
	if team := userTeam(teams, user); team != nil {
		return team.Name
	}
	return ""
}
