package models

import "time"

const (
	CategoryHealth       = "health"
	CategoryProductivity = "productivity"
	CategoryMindfulness  = "mindfulness"
	CategoryFitness      = "fitness"
	CategoryOther        = "other"
)

var HabitCategories = []string{
	CategoryHealth,
	CategoryProductivity,
	CategoryMindfulness,
	CategoryFitness,
	CategoryOther,
}

type Habit struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Points      int       `gorm:"not null" json:"points"`
	Category    string    `gorm:"not null;default:other" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

func IsValidHabitCategory(category string) bool {
	for _, candidate := range HabitCategories {
		if candidate == category {
			return true
		}
	}
	return false
}

// HabitLog is a single completion of one habit by one user on one calendar day.
// Only rows with Completed set count; absence means not done.
type HabitLog struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:uidx_habit_logs_user_habit_date;index" json:"user_id"`
	HabitID   string    `gorm:"not null;uniqueIndex:uidx_habit_logs_user_habit_date;index" json:"habit_id"`
	Date      string    `gorm:"not null;uniqueIndex:uidx_habit_logs_user_habit_date" json:"date"`
	Completed bool      `gorm:"not null" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func (HabitLog) TableName() string {
	return "habit_logs"
}

// HabitLogID derives the deterministic log id so that upserts and deletes are idempotent.
func HabitLogID(userID string, habitID string, date string) string {
	return userID + "-" + habitID + "-" + date
}
