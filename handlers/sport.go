// handlers/sport.go
package handlers

import (
	"team-manage-system/middleware"
	"team-manage-system/models"
	"team-manage-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSportRoutes(app *fiber.App, sportService *services.SportService) {
	// 🔓 Public catalog — the marketing pages read these without user context
	// (still behind Gateway auth)
	app.Get("/sports", sportService.GetAllSports)
	app.Get("/sports/:slug", sportService.GetSportBySlug)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/sports/:id/join", sportService.JoinSport)
	secured.Delete("/sports/:id/leave", sportService.LeaveSport)
	secured.Get("/users/me/sports", sportService.GetMySports)

	// Coach roster view
	coach := secured.Group("/", middleware.RequireRole(models.RoleCoach, models.RoleAdmin))
	coach.Get("/coaches/me/athletes", sportService.GetCoachAthletes)

	// 🔒 Admin catalog management
	admin := secured.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/sports", sportService.CreateSport)
	admin.Put("/sports/:id", sportService.UpdateSport)
	admin.Delete("/sports/:id", sportService.DeleteSport)
}
