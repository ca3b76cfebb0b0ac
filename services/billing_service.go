package services

import (
	"errors"
	"log"
	"time"

	"team-manage-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// GetOrgSubscription backs the portal's billing page. Orgs with no record
// yet read as an implicit trial.
func (s *BillingService) GetOrgSubscription(c *fiber.Ctx) error {
	orgID := c.Params("id")
	var sub models.OrgSubscription
	if err := s.DB.Where("organization_id = ?", orgID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"organization_id": orgID,
				"plan":            "starter",
				"status":          models.SubStatusTrialing,
			})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching subscription"})
	}
	return c.JSON(sub)
}

// UpsertSubscription is fed by the external payment processor's webhook relay
// (admin only). One row per organization.
func (s *BillingService) UpsertSubscription(c *fiber.Ctx) error {
	type Req struct {
		OrganizationID         string     `json:"organization_id" validate:"required,uuid"`
		Plan                   string     `json:"plan" validate:"required"`
		Status                 string     `json:"status" validate:"oneof=trialing active past_due canceled"`
		CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
		ProviderCustomerID     string     `json:"provider_customer_id,omitempty"`
		ProviderSubscriptionID string     `json:"provider_subscription_id,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.OrganizationID == "" || req.Plan == "" {
		return c.Status(400).JSON(fiber.Map{"error": "organization_id and plan are required"})
	}
	switch req.Status {
	case models.SubStatusTrialing, models.SubStatusActive, models.SubStatusPastDue, models.SubStatusCanceled:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid status"})
	}
	if err := s.DB.First(&models.Organization{}, "id = ?", req.OrganizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "organization not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	sub := models.OrgSubscription{
		ID:                     uuid.NewString(),
		OrganizationID:         req.OrganizationID,
		Plan:                   req.Plan,
		Status:                 req.Status,
		CurrentPeriodEnd:       req.CurrentPeriodEnd,
		ProviderCustomerID:     req.ProviderCustomerID,
		ProviderSubscriptionID: req.ProviderSubscriptionID,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "organization_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan", "status", "current_period_end",
			"provider_customer_id", "provider_subscription_id",
		}),
	}).Create(&sub).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to upsert subscription", "details": err.Error()})
	}

	s.DB.Where("organization_id = ?", req.OrganizationID).First(&sub)
	return c.JSON(sub)
}

// StartExpiryScheduler flips active/trialing subscriptions to past_due once
// their period end lapses, so the billing page never shows a stale "active".
func (s *BillingService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.OrgSubscription{}).
				Where("status IN ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
					[]string{models.SubStatusTrialing, models.SubStatusActive}, time.Now()).
				Update("status", models.SubStatusPastDue)
			if res.Error != nil {
				log.Printf("[BILLING] Sweep error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[BILLING] ✅ Marked %d subscription(s) past_due", res.RowsAffected)
			}
		}),
	)
}
