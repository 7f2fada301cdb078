package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/cormacgwin/goodwin-challenge/internal/security"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordLength = 12

// ResetPasswordCmd sets a new password for an account. Without --prompt a
// temporary password is generated and must be changed after the next login.
type ResetPasswordCmd struct {
	Email  string `arg:"" help:"Email address of the account."`
	Prompt bool   `help:"Read the new password from stdin instead of generating one."`
}

func (cmd *ResetPasswordCmd) Run(ctx *Context) error {
	email := services.NormalizeAuthEmail(cmd.Email)
	if email == "" {
		return fmt.Errorf("invalid email address %q", cmd.Email)
	}

	store, closeStore, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	users := store.Repositories().Users
	user, err := users.FindByNormalizedEmail(ctx.runContext(), email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", email)
		}
		return fmt.Errorf("load user: %w", err)
	}

	password, mustChange, err := cmd.newPassword(ctx)
	if err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(ctx.runContext(), user.ID, string(passwordHash), mustChange); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	out := ctx.stdout()
	fmt.Fprintf(out, "Password reset for %s\n", email)
	if mustChange {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
		fmt.Fprintln(out, "User must change password on next login.")
	}
	return nil
}

func (cmd *ResetPasswordCmd) newPassword(ctx *Context) (string, bool, error) {
	if !cmd.Prompt {
		password, err := security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
		return password, true, nil
	}

	stdin := ctx.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	password, err := newPasswordPrompter(stdin, ctx.stdout()).promptNewPassword()
	if err != nil {
		return "", false, err
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return "", false, err
	}
	return password, false, nil
}
