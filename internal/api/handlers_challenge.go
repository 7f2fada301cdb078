package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type toggleRequest struct {
	HabitID string `json:"habit_id"`
	Date    string `json:"date"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) State(c *fiber.Ctx) error {
	state, err := handler.challenge.State(c.UserContext(), sessionUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(state)
}

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := handler.challenge.Dashboard(c.UserContext(), sessionUserID(c), c.Query("date"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dashboard)
}

// ToggleLog flips the session user's completion of one habit on one day.
func (handler *Handler) ToggleLog(c *fiber.Ctx) error {
	var request toggleRequest
	if err := parseJSONBody(c, &request); err != nil {
		return respondServiceError(c, err)
	}
	if strings.TrimSpace(request.Date) == "" {
		request.Date = services.DateKey(handler.challenge.Now())
	}

	userID := sessionUserID(c)
	result, err := handler.toggles.Toggle(c.UserContext(), userID, request.HabitID, request.Date)
	if err != nil {
		return respondServiceError(c, err)
	}

	points := 0
	if user, ok := result.Snapshot.FindUser(userID); ok {
		points = services.DailyPoints(user, result.Snapshot.Habits, services.NewCompletionIndex(result.Snapshot.Logs), result.Date)
	}

	return c.JSON(fiber.Map{
		"ack":          result.Ack,
		"date":         result.Date,
		"completed":    result.Ack.Type == services.ToggleInserted,
		"daily_points": points,
	})
}

func (handler *Handler) Profile(c *fiber.Ctx) error {
	profile, err := handler.challenge.Profile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

func (handler *Handler) Leaderboard(c *fiber.Ctx) error {
	board, err := handler.challenge.Leaderboard(c.UserContext(), c.Query("order"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(board)
}

func (handler *Handler) Timeline(c *fiber.Ctx) error {
	timeline, err := handler.challenge.Timeline(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(timeline)
}

// TimelineStream pushes a fresh timeline as a server-sent event every tick
// until the client goes away. An optional events query parameter bounds the
// stream.
func (handler *Handler) TimelineStream(c *fiber.Ctx) error {
	maxEvents := 0
	if raw := strings.TrimSpace(c.Query("events")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid events")
		}
		maxEvents = parsed
	}

	settings, err := handler.challenge.Settings(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := services.NewTimelineTicker(settings.StartDate, settings.EndDate, handler.location, handler.timelineTick, handler.now)
	updates, err := ticker.Run(ctx)
	if err != nil {
		cancel()
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(writer *bufio.Writer) {
		defer cancel()
		sent := 0
		for timeline := range updates {
			payload, err := json.Marshal(timeline)
			if err != nil {
				logger.Warn("encode timeline event failed", "err", err)
				return
			}
			if _, err := fmt.Fprintf(writer, "event: timeline\ndata: %s\n\n", payload); err != nil {
				return
			}
			if err := writer.Flush(); err != nil {
				logger.Debug("timeline stream closed", "err", err)
				return
			}
			sent++
			if maxEvents > 0 && sent >= maxEvents {
				return
			}
		}
	}))
	return nil
}
