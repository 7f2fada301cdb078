package db

import (
	"context"
	"errors"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	database *gorm.DB
}

func NewSettingsRepository(database *gorm.DB) *SettingsRepository {
	return &SettingsRepository{database: database}
}

// Load returns the single settings row. found is false when none was saved yet.
func (repo *SettingsRepository) Load(ctx context.Context) (settings models.ChallengeSettings, found bool, err error) {
	err = repo.database.WithContext(ctx).Where("id = ?", models.SettingsRowID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ChallengeSettings{}, false, nil
	}
	if err != nil {
		return models.ChallengeSettings{}, false, err
	}
	return settings, true, nil
}

func (repo *SettingsRepository) Save(ctx context.Context, settings models.ChallengeSettings) error {
	settings.ID = models.SettingsRowID
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&settings).Error
}
