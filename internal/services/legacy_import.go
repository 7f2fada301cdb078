package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var ErrLegacyDumpInvalid = errors.New("legacy dump invalid")

type legacyHabitRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
}

type legacyTeamRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	OrderIndex *int   `json:"order_index"`
}

type legacyLogRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type legacySettingsRecord struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
	Rules     string `json:"rules"`
}

type legacyProfileRecord struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	TeamID    *string `json:"team_id"`
	AvatarURL *string `json:"avatar_url"`
}

type legacyDump struct {
	Habits   []legacyHabitRecord   `json:"habits"`
	Teams    []legacyTeamRecord    `json:"teams"`
	Logs     []legacyLogRecord     `json:"logs"`
	Settings *legacySettingsRecord `json:"settings"`
	Profiles []legacyProfileRecord `json:"profiles"`
}

// ImportDataset is a fully decoded snapshot ready to be written in one pass.
type ImportDataset struct {
	Users    []models.User
	Teams    []models.Team
	Habits   []models.Habit
	Logs     []models.HabitLog
	Settings models.ChallengeSettings
}

type ImportReport struct {
	Users   int `json:"users"`
	Teams   int `json:"teams"`
	Habits  int `json:"habits"`
	Logs    int `json:"logs"`
	Skipped int `json:"skipped"`
}

type LegacyImportRepository interface {
	ImportDataset(ctx context.Context, dataset ImportDataset) error
}

type LegacyImportService struct {
	repo     LegacyImportRepository
	location *time.Location
}

func NewLegacyImportService(repo LegacyImportRepository, location *time.Location) *LegacyImportService {
	if location == nil {
		location = time.UTC
	}
	return &LegacyImportService{repo: repo, location: location}
}

// DecodeLegacyDump converts a snake_case export of the hosted backend into
// structured entities, unpacking the stake tag and the packed profile names.
func (service *LegacyImportService) DecodeLegacyDump(reader io.Reader, now time.Time) (ImportDataset, ImportReport, error) {
	var dump legacyDump
	if err := json.NewDecoder(reader).Decode(&dump); err != nil {
		return ImportDataset{}, ImportReport{}, fmt.Errorf("%w: %v", ErrLegacyDumpInvalid, err)
	}

	report := ImportReport{}
	dataset := ImportDataset{Settings: DefaultChallengeSettings(now, service.location)}

	for _, record := range dump.Habits {
		if strings.TrimSpace(record.ID) == "" || record.Points <= 0 {
			report.Skipped++
			continue
		}
		category := record.Category
		if !models.IsValidHabitCategory(category) {
			category = models.CategoryOther
		}
		dataset.Habits = append(dataset.Habits, models.Habit{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
			Points:      record.Points,
			Category:    category,
		})
	}

	for _, record := range dump.Teams {
		if strings.TrimSpace(record.ID) == "" {
			report.Skipped++
			continue
		}
		team := models.Team{ID: record.ID, Name: record.Name, Color: record.Color}
		if record.OrderIndex != nil {
			team.Order = *record.OrderIndex
		}
		dataset.Teams = append(dataset.Teams, team)
	}

	for _, record := range dump.Profiles {
		email := NormalizeAuthEmail(record.Email)
		if strings.TrimSpace(record.ID) == "" || email == "" {
			report.Skipped++
			continue
		}
		name, habitIDs := DecodeLegacyName(record.Name)
		role := models.RoleMember
		if strings.EqualFold(record.Role, models.RoleAdmin) {
			role = models.RoleAdmin
		}
		user := models.User{
			ID:                 record.ID,
			Email:              email,
			Name:               name,
			Role:               role,
			TeamID:             record.TeamID,
			HabitIDs:           habitIDs,
			MustChangePassword: true,
		}
		if record.AvatarURL != nil {
			user.AvatarURL = *record.AvatarURL
		}
		dataset.Users = append(dataset.Users, user)
	}

	for _, record := range dump.Logs {
		if !record.Completed {
			report.Skipped++
			continue
		}
		date, err := NormalizeDateKey(record.Date, service.location)
		if err != nil || record.UserID == "" || record.HabitID == "" {
			report.Skipped++
			continue
		}
		dataset.Logs = append(dataset.Logs, models.HabitLog{
			ID:        models.HabitLogID(record.UserID, record.HabitID, date),
			UserID:    record.UserID,
			HabitID:   record.HabitID,
			Date:      date,
			Completed: true,
		})
	}

	if dump.Settings != nil {
		rules, stake := DecodeLegacyRules(dump.Settings.Rules)
		settings := dataset.Settings
		settings.Name = dump.Settings.Name
		settings.IsActive = dump.Settings.IsActive
		settings.Rules = rules
		settings.StakeAmount = stake
		if start, err := NormalizeDateKey(dump.Settings.StartDate, service.location); err == nil {
			settings.StartDate = start
		} else {
			logger.Warn("legacy settings start date unreadable", "value", dump.Settings.StartDate)
		}
		if end, err := NormalizeDateKey(dump.Settings.EndDate, service.location); err == nil {
			settings.EndDate = end
		} else {
			logger.Warn("legacy settings end date unreadable", "value", dump.Settings.EndDate)
		}
		dataset.Settings = settings
	} else {
		logger.Warn("legacy dump has no settings row, using defaults")
	}

	report.Users = len(dataset.Users)
	report.Teams = len(dataset.Teams)
	report.Habits = len(dataset.Habits)
	report.Logs = len(dataset.Logs)
	return dataset, report, nil
}

func (service *LegacyImportService) Import(ctx context.Context, reader io.Reader, now time.Time) (ImportReport, error) {
	dataset, report, err := service.DecodeLegacyDump(reader, now)
	if err != nil {
		return ImportReport{}, err
	}
	if err := service.repo.ImportDataset(ctx, dataset); err != nil {
		return ImportReport{}, err
	}
	return report, nil
}
