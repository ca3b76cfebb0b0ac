// handlers/org.go
package handlers

import (
	"team-manage-system/middleware"
	"team-manage-system/models"
	"team-manage-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupOrgRoutes(app *fiber.App, orgService *services.OrgService, billingService *services.BillingService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/orgs/:id", orgService.GetOrganization)
	secured.Get("/orgs/:id/members", orgService.GetOrganizationMembers)
	secured.Get("/orgs/:id/subscription", billingService.GetOrgSubscription)

	// 🔒 Admin-only
	admin := secured.Group("/", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/orgs", orgService.CreateOrganization)
	admin.Put("/orgs/:id", orgService.UpdateOrganization)
	admin.Post("/billing/subscriptions", billingService.UpsertSubscription)
}
