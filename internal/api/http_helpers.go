package api

import (
	"errors"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"github.com/gofiber/fiber/v2"
)

var (
	badRequestErrors = []error{
		services.ErrInvalidInput,
		services.ErrInvalidDate,
		services.ErrWeakPassword,
		services.ErrDisplayNameRequired,
		services.ErrDisplayNameTooLong,
		services.ErrHabitSelectionSize,
		services.ErrHabitSelectionDupe,
		services.ErrHabitSelectionUnknown,
		services.ErrChallengeDatesInvalid,
		services.ErrTeamMoveOutOfRange,
		services.ErrInvalidMoveDirection,
		services.ErrLeaderboardOrderInvalid,
		services.ErrPasswordChangeInvalidInput,
		services.ErrPasswordMismatch,
		services.ErrNewPasswordMustDiffer,
	}
	notFoundErrors = []error{
		services.ErrUserNotFound,
		services.ErrHabitNotFound,
		services.ErrTeamNotFound,
		services.ErrTeamAssignmentNotFound,
	}
	conflictErrors = []error{
		services.ErrTogglePending,
		services.ErrEmailAlreadyRegistered,
		services.ErrLastAdminRemoval,
	}
	unauthorizedErrors = []error{
		services.ErrAuthCredentialsInvalid,
		services.ErrInvalidCurrentPassword,
	}
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusForError maps service failures to HTTP statuses. Anything not
// recognised is a server fault.
func statusForError(err error) int {
	switch {
	case matchesAny(err, conflictErrors):
		return fiber.StatusConflict
	case matchesAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case matchesAny(err, unauthorizedErrors):
		return fiber.StatusUnauthorized
	case matchesAny(err, badRequestErrors):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError surfaces client errors verbatim and hides the detail of
// server faults behind a generic message.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return apiError(c, status, "internal error")
	}
	return apiError(c, status, err.Error())
}

func parseJSONBody(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return services.ErrInvalidInput
	}
	return nil
}

// sessionUserID is only empty when a route forgot AuthRequired.
func sessionUserID(c *fiber.Ctx) string {
	user, ok := currentUser(c)
	if !ok {
		return ""
	}
	return user.ID
}
