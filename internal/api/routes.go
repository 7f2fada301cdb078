package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)

	api.Get("/state", handler.AuthRequired, handler.State)
	api.Get("/dashboard", handler.AuthRequired, handler.Dashboard)
	api.Post("/logs/toggle", handler.AuthRequired, handler.ToggleLog)
	api.Get("/profile/:id", handler.AuthRequired, handler.Profile)
	api.Get("/leaderboard", handler.AuthRequired, handler.Leaderboard)

	challenge := api.Group("/challenge", handler.AuthRequired)
	challenge.Get("/timeline", handler.Timeline)
	challenge.Get("/timeline/stream", handler.TimelineStream)

	me := api.Group("/me", handler.AuthRequired)
	me.Put("/name", handler.UpdateName)
	me.Put("/avatar", handler.UpdateAvatar)
	me.Put("/habits", handler.SelectHabits)
	me.Put("/password", handler.ChangePassword)
	me.Delete("", handler.DeleteAccount)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Put("/settings", handler.UpdateSettings)
	admin.Post("/habits", handler.AddHabit)
	admin.Put("/habits/:id", handler.UpdateHabit)
	admin.Delete("/habits/:id", handler.RemoveHabit)
	admin.Post("/teams", handler.AddTeam)
	admin.Put("/teams/:id", handler.UpdateTeam)
	admin.Delete("/teams/:id", handler.RemoveTeam)
	admin.Post("/teams/:id/move", handler.MoveTeam)
	admin.Put("/users/:id/team", handler.AssignUserTeam)
	admin.Get("/report", handler.ReportSummary)
	admin.Get("/report.csv", handler.ReportCSV)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
