// handlers/access_code.go
package handlers

import (
	"errors"

	"team-manage-system/middleware"
	"team-manage-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAccessCodeRoutes(app *fiber.App, codeService *services.AccessCodeService, profileService *services.ProfileService) {
	// 🔐 All access-code routes require user context from the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Issue a code for the caller's organization (coach/admin only)
	staff := secured.Group("/access-codes", middleware.RequireRole(middleware.StaffRoles...))

	staff.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			Role    string  `json:"role" validate:"required,oneof=admin coach athlete"`
			SportID *string `json:"sport_id,omitempty"`
			Gender  string  `json:"gender,omitempty"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		issuerID := c.Locals("user_id").(string)
		prof, err := profileService.GetByExternalID(issuerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "issuer profile not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching issuer profile"})
		}
		if prof.OrganizationID == nil {
			return c.Status(400).JSON(fiber.Map{"error": "issuer is not bound to an organization"})
		}
		// Athlete codes for a sport should come from the coach who will own
		// the relationship; admins issuing them is fine too.
		code, err := codeService.IssueCode(services.IssueCodeInput{
			OrganizationID: *prof.OrganizationID,
			Role:           req.Role,
			SportID:        req.SportID,
			Gender:         req.Gender,
			CreatedBy:      issuerID,
		})
		if err != nil {
			return c.Status(services.StatusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(code)
	})

	staff.Get("/", func(c *fiber.Ctx) error {
		issuerID := c.Locals("user_id").(string)
		prof, err := profileService.GetByExternalID(issuerID)
		if err != nil || prof.OrganizationID == nil {
			return c.Status(404).JSON(fiber.Map{"error": "no organization for caller"})
		}
		codes, err := codeService.ListCodes(*prof.OrganizationID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to list codes"})
		}
		return c.JSON(codes)
	})

	// Validate without consuming — drives the onboarding form's inline check
	secured.Post("/access-codes/validate", func(c *fiber.Ctx) error {
		type Req struct {
			Code         string `json:"code" validate:"required"`
			ExpectedRole string `json:"expected_role,omitempty"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		code, err := codeService.ValidateCode(req.Code, req.ExpectedRole)
		if err != nil {
			return c.Status(services.StatusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"organization_id": code.OrganizationID,
			"role":            code.Role,
			"sport_id":        code.SportID,
			"gender":          code.Gender,
			"issued_by":       code.CreatedBy,
		})
	})

	// Consume the code and materialize relationships
	secured.Post("/access-codes/redeem", func(c *fiber.Ctx) error {
		type Req struct {
			Code         string `json:"code" validate:"required"`
			ExpectedRole string `json:"expected_role,omitempty"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}

		userID := c.Locals("user_id").(string)
		// Make sure a profile exists before binding role/org to it. Bootstrap
		// normally ran on first contact; this is the belt-and-braces path.
		if _, err := profileService.EnsureProfile(userID,
			localsString(c, "user_email"), localsString(c, "user_name")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "profile bootstrap failed", "cause": err.Error()})
		}

		result, err := codeService.RedeemCode(req.Code, userID, req.ExpectedRole)
		if err != nil {
			return c.Status(services.StatusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		msg := "code redeemed successfully"
		if result.Resumed {
			msg = "redemption completed (relationships restored)"
		}
		return c.JSON(fiber.Map{
			"message":         msg,
			"resumed":         result.Resumed,
			"role":            result.Code.Role,
			"organization_id": result.Code.OrganizationID,
			"sport_id":        result.Code.SportID,
		})
	})
}

func localsString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return v
	}
	return ""
}
