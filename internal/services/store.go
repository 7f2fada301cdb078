package services

import (
	"context"
	"errors"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrHabitNotFound = errors.New("habit not found")
)

const (
	ToggleInserted = "insert"
	ToggleDeleted  = "delete"
)

// Snapshot is everything the derivations read, as persisted.
type Snapshot struct {
	Users    []models.User            `json:"users"`
	Teams    []models.Team            `json:"teams"`
	Habits   []models.Habit           `json:"habits"`
	Logs     []models.HabitLog        `json:"logs"`
	Settings models.ChallengeSettings `json:"settings"`
}

// AppState is a snapshot seen from one session.
type AppState struct {
	CurrentUser *models.User `json:"current_user"`
	Snapshot
}

type ToggleAck struct {
	Type string           `json:"type"`
	ID   string           `json:"id"`
	Log  *models.HabitLog `json:"log,omitempty"`
}

// ChallengeStore is the data-access collaborator. Each mutation is a single
// write; callers refresh the snapshot afterwards.
type ChallengeStore interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
	ToggleCompletion(ctx context.Context, userID string, habitID string, date string, wasCompleted bool) (ToggleAck, error)

	AddHabit(ctx context.Context, habit models.Habit) error
	UpdateHabit(ctx context.Context, habit models.Habit) error
	RemoveHabit(ctx context.Context, habitID string) error

	AddTeam(ctx context.Context, team models.Team) error
	UpdateTeam(ctx context.Context, team models.Team) error
	RemoveTeam(ctx context.Context, teamID string) error
	ReorderTeams(ctx context.Context, teams []models.Team) error

	SaveSettings(ctx context.Context, settings models.ChallengeSettings) error

	UpdateUserTeam(ctx context.Context, userID string, teamID *string) error
	UpdateUserAvatar(ctx context.Context, userID string, avatarURL string) error
	UpdateUserName(ctx context.Context, userID string, name string) error
	UpdateUserHabits(ctx context.Context, userID string, habitIDs []string) error
	DeleteAccount(ctx context.Context, userID string) error
}

func DefaultChallengeSettings(now time.Time, location *time.Location) models.ChallengeSettings {
	today := DateAtLocation(now, location)
	return models.ChallengeSettings{
		ID:          models.SettingsRowID,
		Name:        models.DefaultChallengeName,
		StartDate:   DateKey(today),
		EndDate:     DateKey(today.AddDate(0, 0, models.DefaultChallengeDays)),
		IsActive:    true,
		Rules:       models.DefaultRules,
		StakeAmount: models.DefaultStakeAmount,
	}
}

// FindUser looks a user up in the snapshot.
func (snapshot Snapshot) FindUser(userID string) (models.User, bool) {
	for _, user := range snapshot.Users {
		if user.ID == userID {
			return user, true
		}
	}
	return models.User{}, false
}

func (snapshot Snapshot) FindHabit(habitID string) (models.Habit, bool) {
	for _, habit := range snapshot.Habits {
		if habit.ID == habitID {
			return habit, true
		}
	}
	return models.Habit{}, false
}

// Clone copies every slice so that commands can edit the copy freely.
func (snapshot Snapshot) Clone() Snapshot {
	clone := Snapshot{
		Users:    make([]models.User, len(snapshot.Users)),
		Teams:    append([]models.Team(nil), snapshot.Teams...),
		Habits:   append([]models.Habit(nil), snapshot.Habits...),
		Logs:     append([]models.HabitLog(nil), snapshot.Logs...),
		Settings: snapshot.Settings,
	}
	for index, user := range snapshot.Users {
		user.HabitIDs = append([]string(nil), user.HabitIDs...)
		if user.TeamID != nil {
			teamID := *user.TeamID
			user.TeamID = &teamID
		}
		clone.Users[index] = user
	}
	return clone
}
