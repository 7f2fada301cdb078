package db

import (
	"context"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"gorm.io/gorm"
)

type HabitRepository struct {
	database *gorm.DB
}

func NewHabitRepository(database *gorm.DB) *HabitRepository {
	return &HabitRepository{database: database}
}

func (repo *HabitRepository) List(ctx context.Context) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	return repo.database.WithContext(ctx).Create(habit).Error
}

func (repo *HabitRepository) Update(ctx context.Context, habit models.Habit) error {
	result := repo.database.WithContext(ctx).Model(&models.Habit{}).Where("id = ?", habit.ID).Updates(map[string]any{
		"name":        habit.Name,
		"description": habit.Description,
		"points":      habit.Points,
		"category":    habit.Category,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrHabitNotFound
	}
	return nil
}

// DeleteWithLogs removes the habit and every completion that referenced it.
func (repo *HabitRepository) DeleteWithLogs(ctx context.Context, habitID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.HabitLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", habitID).Delete(&models.Habit{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return services.ErrHabitNotFound
		}
		return nil
	})
}
