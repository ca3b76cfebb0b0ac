package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"

	"team-manage-system/models"
	"team-manage-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SportService struct {
	DB *gorm.DB
}

func NewSportService(db *gorm.DB) *SportService {
	return &SportService{DB: db}
}

// CreateSport adds a catalog entry (admin only). Accepts multipart form so
// the logo can ride along; the logo lands in R2.
func (s *SportService) CreateSport(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := c.FormValue("description")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	var count int64
	if err := s.DB.Model(&models.Sport{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking name"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "sport already exists"})
	}

	sport := models.Sport{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		IsActive:    true,
	}

	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "sports/logos/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(logo, key)
		if err != nil {
			log.Printf("ERROR uploading sport logo: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		sport.LogoURL = &url
	}

	if err := s.DB.Create(&sport).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create sport", "details": err.Error()})
	}
	return c.Status(201).JSON(sport)
}

// GetAllSports returns active catalog entries for the public sport pages.
func (s *SportService) GetAllSports(c *fiber.Ctx) error {
	var sports []models.Sport
	if err := s.DB.Where("is_active = ?", true).Order("name ASC").Find(&sports).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch sports"})
	}
	return c.JSON(sports)
}

func (s *SportService) GetSportBySlug(c *fiber.Ctx) error {
	var sport models.Sport
	if err := s.DB.Where("slug = ?", c.Params("slug")).First(&sport).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "sport not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(sport)
}

func (s *SportService) UpdateSport(c *fiber.Ctx) error {
	id := c.Params("id")
	var sport models.Sport
	if err := s.DB.First(&sport, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "sport not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(c.FormValue("name")); name != "" && name != sport.Name {
		updates["name"] = name
		updates["slug"] = slug.Make(name)
	}
	if desc := c.FormValue("description"); desc != "" {
		updates["description"] = desc
	}
	if active := c.FormValue("is_active"); active != "" {
		updates["is_active"] = strings.ToLower(active) == "true"
	}
	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "sports/logos/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(logo, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		updates["logo_url"] = url
		// The new URL supersedes the old object; a failed delete only leaks it.
		if sport.LogoURL != nil {
			if oldKey := utils.ObjectKeyFromURL(*sport.LogoURL); oldKey != "" {
				if err := utils.DeleteFileFromR2(oldKey); err != nil {
					log.Printf("WARN failed to delete replaced logo %s: %v", oldKey, err)
				}
			}
		}
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&sport).Updates(updates).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "update failed", "details": err.Error()})
		}
	}
	s.DB.First(&sport, "id = ?", id)
	return c.JSON(sport)
}

// DeleteSport retires a catalog entry. Soft delete keeps historical
// relationship rows resolvable.
func (s *SportService) DeleteSport(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.Sport{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "sport not found"})
	}
	return c.JSON(fiber.Map{"message": "sport deleted"})
}

// JoinSport adds the caller to a sport inside their organization. Uses the
// same conflict-ignoring insert as redemption so double-joins are no-ops.
func (s *SportService) JoinSport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	sportID := c.Params("id")
	type Req struct {
		Gender string `json:"gender,omitempty"`
	}
	var req Req
	_ = c.BodyParser(&req)

	var prof models.Profile
	if err := s.DB.Where("external_user_id = ?", userID).First(&prof).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
	}
	if prof.OrganizationID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "profile is not bound to an organization yet"})
	}
	if err := s.DB.First(&models.Sport{}, "id = ?", sportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "sport not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	membership := models.UserSport{
		ID:             uuid.NewString(),
		UserID:         userID,
		SportID:        sportID,
		OrganizationID: *prof.OrganizationID,
		Gender:         req.Gender,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to join sport", "details": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "joined sport", "sport_id": sportID})
}

// LeaveSport removes the caller's membership. Hard delete so re-joining
// doesn't trip the unique index.
func (s *SportService) LeaveSport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	sportID := c.Params("id")

	result := s.DB.Where("user_id = ? AND sport_id = ?", userID, sportID).Delete(&models.UserSport{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "membership not found"})
	}
	return c.JSON(fiber.Map{"message": "left sport"})
}

// GetMySports lists the caller's sport memberships with catalog details.
func (s *SportService) GetMySports(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	type Row struct {
		SportID        string `json:"sport_id"`
		Name           string `json:"name"`
		Slug           string `json:"slug"`
		Gender         string `json:"gender,omitempty"`
		OrganizationID string `json:"organization_id"`
	}
	var rows []Row
	err := s.DB.Raw(`
		SELECT us.sport_id, sp.name, sp.slug, us.gender, us.organization_id
		FROM user_sports us
		INNER JOIN sports sp ON sp.id = us.sport_id
		WHERE us.user_id = ?
		ORDER BY sp.name ASC
	`, userID).Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch memberships"})
	}
	return c.JSON(rows)
}

// GetCoachAthletes is the coach roster view: every athlete linked to the
// calling coach, with sport and profile details joined in.
func (s *SportService) GetCoachAthletes(c *fiber.Ctx) error {
	coachID := c.Locals("user_id").(string)
	type Row struct {
		AthleteID      string `json:"athlete_id"`
		DisplayName    string `json:"display_name"`
		SportID        string `json:"sport_id"`
		SportName      string `json:"sport_name"`
		OrganizationID string `json:"organization_id"`
	}
	var rows []Row
	err := s.DB.Raw(`
		SELECT ca.athlete_id, p.display_name, ca.sport_id, sp.name AS sport_name, ca.organization_id
		FROM coach_athletes ca
		LEFT JOIN profiles p ON p.external_user_id = ca.athlete_id
		LEFT JOIN sports sp ON sp.id = ca.sport_id
		WHERE ca.coach_id = ?
		ORDER BY sp.name ASC, p.display_name ASC
	`, coachID).Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR fetching roster for coach %s: %v", coachID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch roster"})
	}
	return c.JSON(rows)
}
