package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var request registerRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}

	user, err := handler.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	})
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	// Accounts are written outside the snapshot cache.
	handler.snapshots.Invalidate()
	logger.Info("account registered", "user_id", user.ID, "role", user.Role)

	if err := handler.setAuthCookie(c, &user, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	client := clientKey(c)
	now := handler.now()
	if wait := handler.loginThrottle.retryAfter(client, now); wait > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	var request loginRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}

	user, err := handler.authService.Authenticate(c.UserContext(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginThrottle.recordFailure(client, now)
		}
		return respondServiceError(c, err)
	}
	handler.loginThrottle.forget(client)

	if err := handler.setAuthCookie(c, &user, request.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"user":                 user,
		"must_change_password": user.MustChangePassword,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	var request changePasswordRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.authService.ChangePassword(c.UserContext(), user.ID, request.CurrentPassword, request.NewPassword, request.ConfirmPassword); err != nil {
		return respondServiceError(c, err)
	}
	if err := handler.setAuthCookie(c, user, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true})
}
