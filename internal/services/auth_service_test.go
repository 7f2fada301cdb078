package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type stubAuthUserRepo struct {
	users     map[string]models.User
	createErr error
}

func newStubAuthUserRepo() *stubAuthUserRepo {
	return &stubAuthUserRepo{users: map[string]models.User{}}
}

func (stub *stubAuthUserRepo) ExistsByNormalizedEmail(_ context.Context, email string) (bool, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubAuthUserRepo) FindByNormalizedEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (stub *stubAuthUserRepo) FindByID(_ context.Context, userID string) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (stub *stubAuthUserRepo) Count(context.Context) (int64, error) {
	return int64(len(stub.users)), nil
}

func (stub *stubAuthUserRepo) Create(_ context.Context, user *models.User) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	stub.users[user.ID] = *user
	return nil
}

func (stub *stubAuthUserRepo) UpdatePassword(_ context.Context, userID string, passwordHash string, mustChange bool) error {
	user, ok := stub.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.MustChangePassword = mustChange
	stub.users[userID] = user
	return nil
}

func TestAuthServiceRegisterFirstUserIsAdmin(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := NewAuthService(repo)

	first, err := service.Register(context.Background(), RegisterInput{Name: " Ada ", Email: "ADA@example.com", Password: "StrongPass1"})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if first.Role != models.RoleAdmin || first.Email != "ada@example.com" || first.Name != "Ada" {
		t.Fatalf("unexpected first user: %+v", first)
	}
	if !strings.HasPrefix(first.AvatarURL, defaultAvatarBaseURL) || !strings.HasSuffix(first.AvatarURL, "seed=Ada") {
		t.Fatalf("unexpected default avatar %q", first.AvatarURL)
	}
	if first.HabitIDs == nil || len(first.HabitIDs) != 0 {
		t.Fatalf("expected empty habit selection, got %v", first.HabitIDs)
	}

	second, err := service.Register(context.Background(), RegisterInput{Name: "Max", Email: "max@example.com", Password: "StrongPass1"})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if second.Role != models.RoleMember {
		t.Fatalf("expected second user to be a member, got %q", second.Role)
	}
}

func TestAuthServiceRegisterRejectsInvalidInput(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := NewAuthService(repo)
	ctx := context.Background()

	if _, err := service.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "StrongPass1"}); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{name: "duplicate email", input: RegisterInput{Name: "Other", Email: " ada@EXAMPLE.com", Password: "StrongPass1"}, want: ErrEmailAlreadyRegistered},
		{name: "weak password", input: RegisterInput{Name: "Weak", Email: "weak@example.com", Password: "password"}, want: ErrWeakPassword},
		{name: "bad email", input: RegisterInput{Name: "Bad", Email: "nope", Password: "StrongPass1"}, want: ErrAuthCredentialsInvalid},
		{name: "blank name", input: RegisterInput{Name: "   ", Email: "blank@example.com", Password: "StrongPass1"}, want: ErrDisplayNameRequired},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := service.Register(ctx, testCase.input); !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected rejected registrations to write nothing, got %d users", len(repo.users))
	}
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := NewAuthService(repo)
	ctx := context.Background()

	registered, err := service.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "StrongPass1"})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	repo.users["imported"] = models.User{ID: "imported", Email: "imported@example.com", MustChangePassword: true}

	user, err := service.Authenticate(ctx, " ADA@example.com ", "StrongPass1")
	if err != nil || user.ID != registered.ID {
		t.Fatalf("Authenticate() = %+v, %v", user, err)
	}

	for _, attempt := range []struct{ email, password string }{
		{"ada@example.com", "WrongPass1"},
		{"missing@example.com", "StrongPass1"},
		{"imported@example.com", "anything"},
		{"", "StrongPass1"},
	} {
		if _, err := service.Authenticate(ctx, attempt.email, attempt.password); !errors.Is(err, ErrAuthCredentialsInvalid) {
			t.Fatalf("Authenticate(%q) expected ErrAuthCredentialsInvalid, got %v", attempt.email, err)
		}
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := NewAuthService(repo)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "StrongPass1"})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	stored := repo.users[user.ID]
	stored.MustChangePassword = true
	repo.users[user.ID] = stored

	if err := service.ChangePassword(ctx, user.ID, "WrongPass1", "NewStrong2", "NewStrong2"); !errors.Is(err, ErrInvalidCurrentPassword) {
		t.Fatalf("expected ErrInvalidCurrentPassword, got %v", err)
	}
	if err := service.ChangePassword(ctx, user.ID, "StrongPass1", "NewStrong2", "NewStrong2"); err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}

	updated := repo.users[user.ID]
	if updated.MustChangePassword {
		t.Fatalf("expected forced change flag to be cleared")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NewStrong2")) != nil {
		t.Fatalf("expected new password hash to be stored")
	}
	if err := service.ChangePassword(ctx, "ghost", "a", "b", "b"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
