package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailAlreadyRegistered = errors.New("email already registered")

const defaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

type AuthUserRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID string) (models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string, mustChange bool) error
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a member account. The very first account becomes the admin.
func (service *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}
	name, err := NormalizeDisplayName(input.Name)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrEmailAlreadyRegistered
	}

	count, err := service.users.Count(ctx)
	if err != nil {
		return models.User{}, err
	}
	role := models.RoleMember
	if count == 0 {
		role = models.RoleAdmin
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
		Role:         role,
		AvatarURL:    defaultAvatarBaseURL + url.QueryEscape(name),
		HabitIDs:     []string{},
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate never says which half of the credentials was wrong.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, err
	}
	if strings.TrimSpace(user.PasswordHash) == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID string) (models.User, error) {
	return service.users.FindByID(ctx, userID)
}

func (service *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string, confirmPassword string) error {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := ValidatePasswordChange(user.PasswordHash, currentPassword, newPassword, confirmPassword); err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return service.users.UpdatePassword(ctx, userID, string(passwordHash), false)
}
