package api

import (
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"github.com/gofiber/fiber/v2"
)

type nameRequest struct {
	Name string `json:"name"`
}

type habitSelectionRequest struct {
	HabitIDs []string `json:"habit_ids"`
}

func (handler *Handler) UpdateName(c *fiber.Ctx) error {
	var request nameRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	name, err := handler.challenge.UpdateName(c.UserContext(), sessionUserID(c), request.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"name": name})
}

func (handler *Handler) UpdateAvatar(c *fiber.Ctx) error {
	var request services.AvatarInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	if err := handler.challenge.UpdateAvatar(c.UserContext(), sessionUserID(c), request); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) SelectHabits(c *fiber.Ctx) error {
	var request habitSelectionRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	selection, err := handler.challenge.SelectHabits(c.UserContext(), sessionUserID(c), request.HabitIDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"habit_ids": selection})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	if err := handler.challenge.DeleteAccount(c.UserContext(), sessionUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
