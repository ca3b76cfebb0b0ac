// handlers/profile.go
package handlers

import (
	"errors"
	"log"
	"path/filepath"

	"team-manage-system/middleware"
	"team-manage-system/services"
	"team-manage-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// First authenticated contact bootstraps the profile (idempotent), so the
	// portal always has a row to render.
	secured.Get("/profiles/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		email, _ := c.Locals("user_email").(string)
		name, _ := c.Locals("user_name").(string)

		prof, err := profileService.EnsureProfile(userID, email, name)
		if err != nil {
			return c.Status(services.StatusForError(err)).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}
		return c.JSON(prof)
	})

	secured.Put("/profiles/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		displayName := c.FormValue("display_name")

		var avatarURL *string
		if avatar, err := c.FormFile("avatar"); err == nil && avatar.Size > 0 {
			ext := filepath.Ext(avatar.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			key := "profiles/avatars/" + uuid.NewString() + ext
			url, err := utils.UploadFileToR2(avatar, key)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "failed to upload avatar"})
			}
			avatarURL = &url
			// Drop the replaced avatar object; a failed delete only leaks it.
			if existing, err := profileService.GetByExternalID(userID); err == nil && existing.AvatarURL != nil {
				if oldKey := utils.ObjectKeyFromURL(*existing.AvatarURL); oldKey != "" {
					if err := utils.DeleteFileFromR2(oldKey); err != nil {
						log.Printf("WARN failed to delete replaced avatar %s: %v", oldKey, err)
					}
				}
			}
		}

		prof, err := profileService.UpdateProfile(userID, displayName, avatarURL)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "update failed", "cause": err.Error()})
		}
		return c.JSON(prof)
	})

	// One-time role selection for accounts that signed up without a code
	secured.Post("/profiles/me/role", func(c *fiber.Ctx) error {
		type Req struct {
			Role string `json:"role" validate:"required,oneof=admin coach athlete"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		userID := c.Locals("user_id").(string)
		prof, err := profileService.SelectRole(userID, req.Role)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
			}
			return c.Status(services.StatusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(prof)
	})
}
