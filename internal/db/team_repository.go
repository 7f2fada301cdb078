package db

import (
	"context"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"gorm.io/gorm"
)

type TeamRepository struct {
	database *gorm.DB
}

func NewTeamRepository(database *gorm.DB) *TeamRepository {
	return &TeamRepository{database: database}
}

func (repo *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	if err := repo.database.WithContext(ctx).Order("order_index ASC, created_at ASC, id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (repo *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	return repo.database.WithContext(ctx).Create(team).Error
}

func (repo *TeamRepository) Update(ctx context.Context, team models.Team) error {
	result := repo.database.WithContext(ctx).Model(&models.Team{}).Where("id = ?", team.ID).Updates(map[string]any{
		"name":  team.Name,
		"color": team.Color,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrTeamNotFound
	}
	return nil
}

// DeleteAndUnassign removes the team and clears it from every member.
func (repo *TeamRepository) DeleteAndUnassign(ctx context.Context, teamID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("team_id = ?", teamID).Update("team_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", teamID).Delete(&models.Team{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return services.ErrTeamNotFound
		}
		return nil
	})
}

// Reorder writes every given order_index in one transaction.
func (repo *TeamRepository) Reorder(ctx context.Context, teams []models.Team) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, team := range teams {
			result := tx.Model(&models.Team{}).Where("id = ?", team.ID).Update("order_index", team.Order)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return services.ErrTeamNotFound
			}
		}
		return nil
	})
}
