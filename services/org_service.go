package services

import (
	"errors"
	"log"
	"strings"

	"team-manage-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrgService struct {
	DB *gorm.DB
}

func NewOrgService(db *gorm.DB) *OrgService {
	return &OrgService{DB: db}
}

// CreateOrganization registers a new club/school (admin only).
func (s *OrgService) CreateOrganization(c *fiber.Ctx) error {
	type Req struct {
		Name         string `json:"name" validate:"required"`
		ContactEmail string `json:"contact_email,omitempty"`
		ContactPhone string `json:"contact_phone,omitempty"`
		Website      string `json:"website,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	var count int64
	if err := s.DB.Model(&models.Organization{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking name", "details": err.Error()})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "organization name already exists"})
	}

	org := models.Organization{
		ID:           uuid.NewString(),
		Name:         name,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Website:      strings.TrimSpace(req.Website),
	}
	if err := s.DB.Create(&org).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create organization", "details": err.Error()})
	}
	return c.Status(201).JSON(org)
}

func (s *OrgService) GetOrganization(c *fiber.Ctx) error {
	id := c.Params("id")
	var org models.Organization
	if err := s.DB.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "organization not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(org)
}

func (s *OrgService) UpdateOrganization(c *fiber.Ctx) error {
	id := c.Params("id")
	type Req struct {
		Name         *string `json:"name,omitempty"`
		ContactEmail *string `json:"contact_email,omitempty"`
		ContactPhone *string `json:"contact_phone,omitempty"`
		Website      *string `json:"website,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var org models.Organization
	if err := s.DB.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "organization not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = strings.TrimSpace(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Website != nil {
		updates["website"] = strings.TrimSpace(*req.Website)
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&org).Updates(updates).Error; err != nil {
			log.Printf("ERROR updating organization %s: %v", id, err)
			return c.Status(500).JSON(fiber.Map{"error": "update failed"})
		}
	}
	s.DB.First(&org, "id = ?", id)
	return c.JSON(org)
}

// GetOrganizationMembers lists the org's profiles grouped by role for the
// admin dashboard.
func (s *OrgService) GetOrganizationMembers(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.DB.First(&models.Organization{}, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "organization not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var profiles []models.Profile
	if err := s.DB.Where("organization_id = ?", id).
		Order("display_name ASC").
		Find(&profiles).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch members"})
	}

	grouped := fiber.Map{
		"admins":   []models.Profile{},
		"coaches":  []models.Profile{},
		"athletes": []models.Profile{},
		"pending":  []models.Profile{},
	}
	for _, p := range profiles {
		switch p.Role {
		case models.RoleAdmin:
			grouped["admins"] = append(grouped["admins"].([]models.Profile), p)
		case models.RoleCoach:
			grouped["coaches"] = append(grouped["coaches"].([]models.Profile), p)
		case models.RoleAthlete:
			grouped["athletes"] = append(grouped["athletes"].([]models.Profile), p)
		default:
			grouped["pending"] = append(grouped["pending"].([]models.Profile), p)
		}
	}
	return c.JSON(grouped)
}
