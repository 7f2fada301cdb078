package api

import (
	"bytes"
	"fmt"

	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"github.com/gofiber/fiber/v2"
)

type moveTeamRequest struct {
	Direction services.MoveDirection `json:"direction"`
}

type teamAssignmentRequest struct {
	TeamID *string `json:"team_id"`
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	var request services.SettingsInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	settings, err := handler.challenge.UpdateSettings(c.UserContext(), request)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(settings)
}

func (handler *Handler) AddHabit(c *fiber.Ctx) error {
	var request services.HabitInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	habit, err := handler.challenge.AddHabit(c.UserContext(), request)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(habit)
}

func (handler *Handler) UpdateHabit(c *fiber.Ctx) error {
	var request services.HabitInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	habit, err := handler.challenge.UpdateHabit(c.UserContext(), c.Params("id"), request)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(habit)
}

func (handler *Handler) RemoveHabit(c *fiber.Ctx) error {
	if err := handler.challenge.RemoveHabit(c.UserContext(), c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) AddTeam(c *fiber.Ctx) error {
	var request services.TeamInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	team, err := handler.challenge.AddTeam(c.UserContext(), request)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (handler *Handler) UpdateTeam(c *fiber.Ctx) error {
	var request services.TeamInput
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	team, err := handler.challenge.UpdateTeam(c.UserContext(), c.Params("id"), request)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(team)
}

func (handler *Handler) RemoveTeam(c *fiber.Ctx) error {
	if err := handler.challenge.RemoveTeam(c.UserContext(), c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) MoveTeam(c *fiber.Ctx) error {
	var request moveTeamRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	teams, err := handler.challenge.MoveTeam(c.UserContext(), c.Params("id"), request.Direction)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"teams": teams})
}

func (handler *Handler) AssignUserTeam(c *fiber.Ctx) error {
	var request teamAssignmentRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	if err := handler.challenge.AssignUserTeam(c.UserContext(), c.Params("id"), request.TeamID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ReportSummary(c *fiber.Ctx) error {
	summary, err := handler.reports.BuildSummary(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

func (handler *Handler) ReportCSV(c *fiber.Ctx) error {
	rows, err := handler.reports.BuildRows(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	var output bytes.Buffer
	if err := services.WriteReportCSV(&output, rows); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build report")
	}

	filename := fmt.Sprintf("challenge-report-%s.csv", services.DateKey(handler.challenge.Now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(output.Bytes())
}
