package db

import (
	"context"
	"errors"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for index := range users {
		if users[index].HabitIDs == nil {
			users[index].HabitIDs = []string{}
		}
	}
	return users, nil
}

func (repo *UserRepository) FindByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return models.User{}, translateUserError(err)
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, translateUserError(err)
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Create(user).Error
}

func (repo *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, mustChangePassword bool) error {
	return repo.updateByID(ctx, userID, map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	})
}

func (repo *UserRepository) UpdateTeam(ctx context.Context, userID string, teamID *string) error {
	return repo.updateByID(ctx, userID, map[string]any{"team_id": teamID})
}

func (repo *UserRepository) UpdateAvatar(ctx context.Context, userID string, avatarURL string) error {
	return repo.updateByID(ctx, userID, map[string]any{"avatar_url": avatarURL})
}

func (repo *UserRepository) UpdateName(ctx context.Context, userID string, name string) error {
	return repo.updateByID(ctx, userID, map[string]any{"name": name})
}

// UpdateHabits goes through the struct path so the JSON serializer applies.
func (repo *UserRepository) UpdateHabits(ctx context.Context, userID string, habitIDs []string) error {
	if habitIDs == nil {
		habitIDs = []string{}
	}
	result := repo.database.WithContext(ctx).Model(&models.User{ID: userID}).
		Select("HabitIDs").
		Updates(&models.User{HabitIDs: habitIDs})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrUserNotFound
	}
	return nil
}

func (repo *UserRepository) DeleteAccountAndRelatedData(ctx context.Context, userID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.HabitLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return services.ErrUserNotFound
		}
		return nil
	})
}

func (repo *UserRepository) updateByID(ctx context.Context, userID string, updates map[string]any) error {
	result := repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrUserNotFound
	}
	return nil
}

func translateUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrUserNotFound
	}
	return err
}
