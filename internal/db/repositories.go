package db

import "gorm.io/gorm"

type Repositories struct {
	Users    *UserRepository
	Teams    *TeamRepository
	Habits   *HabitRepository
	Logs     *HabitLogRepository
	Settings *SettingsRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(database),
		Teams:    NewTeamRepository(database),
		Habits:   NewHabitRepository(database),
		Logs:     NewHabitLogRepository(database),
		Settings: NewSettingsRepository(database),
	}
}
