package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 200

// Store is the sqlite-backed ChallengeStore.
type Store struct {
	database *gorm.DB
	repos    *Repositories
	location *time.Location
	now      func() time.Time
}

func NewStore(database *gorm.DB, location *time.Location, now func() time.Time) *Store {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		database: database,
		repos:    NewRepositories(database),
		location: location,
		now:      now,
	}
}

func (store *Store) Repositories() *Repositories {
	return store.repos
}

func (store *Store) FetchSnapshot(ctx context.Context) (services.Snapshot, error) {
	users, err := store.repos.Users.List(ctx)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	teams, err := store.repos.Teams.List(ctx)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load teams: %w", err)
	}
	habits, err := store.repos.Habits.List(ctx)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load habits: %w", err)
	}
	logs, err := store.repos.Logs.ListRecent(ctx, SnapshotLogLimit)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load logs: %w", err)
	}
	settings, found, err := store.repos.Settings.Load(ctx)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	if !found {
		settings = services.DefaultChallengeSettings(store.now(), store.location)
	}

	return services.Snapshot{
		Users:    users,
		Teams:    teams,
		Habits:   habits,
		Logs:     logs,
		Settings: settings,
	}, nil
}

func (store *Store) ToggleCompletion(ctx context.Context, userID string, habitID string, date string, wasCompleted bool) (services.ToggleAck, error) {
	id := models.HabitLogID(userID, habitID, date)
	if wasCompleted {
		if err := store.repos.Logs.Delete(ctx, userID, habitID, date); err != nil {
			return services.ToggleAck{}, fmt.Errorf("delete log: %w", err)
		}
		return services.ToggleAck{Type: services.ToggleDeleted, ID: id}, nil
	}

	log := models.HabitLog{ID: id, UserID: userID, HabitID: habitID, Date: date, Completed: true}
	if err := store.repos.Logs.MarkCompleted(ctx, &log); err != nil {
		return services.ToggleAck{}, fmt.Errorf("upsert log: %w", err)
	}
	return services.ToggleAck{Type: services.ToggleInserted, ID: id, Log: &log}, nil
}

func (store *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	return store.repos.Habits.Create(ctx, &habit)
}

func (store *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	return store.repos.Habits.Update(ctx, habit)
}

func (store *Store) RemoveHabit(ctx context.Context, habitID string) error {
	return store.repos.Habits.DeleteWithLogs(ctx, habitID)
}

func (store *Store) AddTeam(ctx context.Context, team models.Team) error {
	return store.repos.Teams.Create(ctx, &team)
}

func (store *Store) UpdateTeam(ctx context.Context, team models.Team) error {
	return store.repos.Teams.Update(ctx, team)
}

func (store *Store) RemoveTeam(ctx context.Context, teamID string) error {
	return store.repos.Teams.DeleteAndUnassign(ctx, teamID)
}

func (store *Store) ReorderTeams(ctx context.Context, teams []models.Team) error {
	return store.repos.Teams.Reorder(ctx, teams)
}

func (store *Store) SaveSettings(ctx context.Context, settings models.ChallengeSettings) error {
	return store.repos.Settings.Save(ctx, settings)
}

func (store *Store) UpdateUserTeam(ctx context.Context, userID string, teamID *string) error {
	return store.repos.Users.UpdateTeam(ctx, userID, teamID)
}

func (store *Store) UpdateUserAvatar(ctx context.Context, userID string, avatarURL string) error {
	return store.repos.Users.UpdateAvatar(ctx, userID, avatarURL)
}

func (store *Store) UpdateUserName(ctx context.Context, userID string, name string) error {
	return store.repos.Users.UpdateName(ctx, userID, name)
}

func (store *Store) UpdateUserHabits(ctx context.Context, userID string, habitIDs []string) error {
	return store.repos.Users.UpdateHabits(ctx, userID, habitIDs)
}

func (store *Store) DeleteAccount(ctx context.Context, userID string) error {
	return store.repos.Users.DeleteAccountAndRelatedData(ctx, userID)
}

// ImportDataset writes an imported dataset in one transaction. Existing users
// and logs are left alone; teams, habits and settings take the imported values.
func (store *Store) ImportDataset(ctx context.Context, dataset services.ImportDataset) error {
	return store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(dataset.Teams) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(dataset.Teams, importBatchSize).Error; err != nil {
				return fmt.Errorf("import teams: %w", err)
			}
		}
		if len(dataset.Habits) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(dataset.Habits, importBatchSize).Error; err != nil {
				return fmt.Errorf("import habits: %w", err)
			}
		}
		if len(dataset.Users) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(dataset.Users, importBatchSize).Error; err != nil {
				return fmt.Errorf("import users: %w", err)
			}
		}
		if len(dataset.Logs) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(dataset.Logs, importBatchSize).Error; err != nil {
				return fmt.Errorf("import logs: %w", err)
			}
		}

		settings := dataset.Settings
		settings.ID = models.SettingsRowID
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&settings).Error; err != nil {
			return fmt.Errorf("import settings: %w", err)
		}
		return nil
	})
}

var (
	_ services.ChallengeStore         = (*Store)(nil)
	_ services.LegacyImportRepository = (*Store)(nil)
	_ services.AuthUserRepository     = (*UserRepository)(nil)
)
