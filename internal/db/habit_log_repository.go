package db

import (
	"context"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotLogLimit caps how many logs a snapshot carries, newest first.
const SnapshotLogLimit = 20000

type HabitLogRepository struct {
	database *gorm.DB
}

func NewHabitLogRepository(database *gorm.DB) *HabitLogRepository {
	return &HabitLogRepository{database: database}
}

func (repo *HabitLogRepository) ListRecent(ctx context.Context, limit int) ([]models.HabitLog, error) {
	logs := make([]models.HabitLog, 0)
	query := repo.database.WithContext(ctx).Order("date DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// MarkCompleted upserts the completed log for the key.
func (repo *HabitLogRepository) MarkCompleted(ctx context.Context, log *models.HabitLog) error {
	log.Completed = true
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed"}),
	}).Create(log).Error
}

func (repo *HabitLogRepository) Delete(ctx context.Context, userID string, habitID string, date string) error {
	return repo.database.WithContext(ctx).
		Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
		Delete(&models.HabitLog{}).Error
}
