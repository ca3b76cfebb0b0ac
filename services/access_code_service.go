package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"team-manage-system/models"
	"team-manage-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessCodeService struct {
	DB *gorm.DB
}

func NewAccessCodeService(db *gorm.DB) *AccessCodeService {
	return &AccessCodeService{DB: db}
}

// IssueCodeInput carries everything needed to mint a new code.
type IssueCodeInput struct {
	OrganizationID string
	Role           string
	SportID        *string
	Gender         string
	CreatedBy      string // issuer's ExternalUserID
}

// RedemptionResult is what a successful (or resumed) redemption returns.
type RedemptionResult struct {
	Code    *models.AccessCode `json:"code"`
	Resumed bool               `json:"resumed"` // true when only the relationship inserts were re-run
}

// IssueCode mints an unused code scoped to a role and organization. Retries
// the generated string on the (astronomically rare) unique-index collision.
func (s *AccessCodeService) IssueCode(in IssueCodeInput) (*models.AccessCode, error) {
	if in.OrganizationID == "" || in.CreatedBy == "" {
		return nil, fmt.Errorf("%w: organization_id and created_by are required", ErrValidation)
	}
	if !models.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: role must be one of admin, coach, athlete", ErrValidation)
	}
	if err := s.DB.First(&models.Organization{}, "id = ?", in.OrganizationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: organization not found", ErrValidation)
		}
		return nil, err
	}
	if in.SportID != nil {
		if err := s.DB.First(&models.Sport{}, "id = ?", *in.SportID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: sport not found", ErrValidation)
			}
			return nil, err
		}
	}

	var code *models.AccessCode
	for attempt := 0; attempt < 3; attempt++ {
		code = &models.AccessCode{
			ID:             uuid.NewString(),
			Code:           utils.GenerateAccessCode(),
			OrganizationID: in.OrganizationID,
			Role:           in.Role,
			SportID:        in.SportID,
			Gender:         in.Gender,
			CreatedBy:      in.CreatedBy,
		}
		err := s.DB.Create(code).Error
		if err == nil {
			return code, nil
		}
		// Collision on the code text: regenerate and try again.
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			log.Printf("[CODES] ⚠️ code collision on %s, regenerating", code.Code)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to mint a unique access code after 3 attempts")
}

// ListCodes returns all codes issued within an organization, newest first.
func (s *AccessCodeService) ListCodes(organizationID string) ([]models.AccessCode, error) {
	var codes []models.AccessCode
	err := s.DB.Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&codes).Error
	return codes, err
}

// ValidateCode looks a code up by exact text and checks it against the
// redemption context. expectedRole is the role of the flow the caller came
// through ("" skips the role check, used when listing/inspecting).
//
// Never mutates the code.
func (s *AccessCodeService) ValidateCode(codeText, expectedRole string) (*models.AccessCode, error) {
	codeText = strings.ToUpper(strings.TrimSpace(codeText))
	if codeText == "" {
		return nil, fmt.Errorf("%w: code is required", ErrValidation)
	}
	var code models.AccessCode
	if err := s.DB.Where("code = ?", codeText).First(&code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if code.Used() {
		return &code, ErrCodeAlreadyUsed
	}
	if expectedRole != "" && code.Role != expectedRole {
		return nil, ErrRoleMismatch
	}
	return &code, nil
}

// RedeemCode runs the full redemption state machine for redeemerID:
//
//  1. re-validate (guards against a stale read since the client's validate call)
//  2. conditional update setting used_at/used_by only while used_at IS NULL —
//     the sole concurrency guard; RowsAffected == 0 means we lost the race
//  3. materialize the relationship rows (idempotent upserts)
//
// There is deliberately no transaction spanning steps 2 and 3: a crash
// between them leaves the code consumed with relationships missing, which
// both the resumable path below and the reconciliation worker repair.
//
// If the code is already consumed *by this same redeemer* (a retry after the
// partial-failure window), only step 3 is re-run and Resumed is set.
func (s *AccessCodeService) RedeemCode(codeText, redeemerID, expectedRole string) (*RedemptionResult, error) {
	if redeemerID == "" {
		return nil, fmt.Errorf("%w: redeemer identity is required", ErrValidation)
	}

	code, err := s.ValidateCode(codeText, expectedRole)
	if err != nil {
		if err == ErrCodeAlreadyUsed && code != nil && code.UsedBy != nil && *code.UsedBy == redeemerID &&
			(expectedRole == "" || code.Role == expectedRole) {
			// Resumable: this caller already won the race, the side effects
			// just never landed. Re-run them all; every one is idempotent.
			if err := s.RepairRedemption(code, redeemerID); err != nil {
				return nil, err
			}
			log.Printf("[REDEEM] 🔁 resumed side effects for code %s (user %s)", code.Code, redeemerID)
			return &RedemptionResult{Code: code, Resumed: true}, nil
		}
		return nil, err
	}

	now := time.Now()
	res := s.DB.Model(&models.AccessCode{}).
		Where("id = ? AND used_at IS NULL", code.ID).
		Updates(map[string]interface{}{
			"used_at": now,
			"used_by": redeemerID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent redeemer. Do not touch relationships.
		return nil, ErrCodeAlreadyUsed
	}
	code.UsedAt = &now
	code.UsedBy = &redeemerID

	if err := s.bindRedeemerProfile(code, redeemerID); err != nil {
		// Same partial-failure class as a missed relationship insert: the
		// caller's resumable retry and the reconcile sweep both re-run the
		// bind, so log and keep going.
		log.Printf("[REDEEM] ⚠️ failed to bind profile for %s: %v", redeemerID, err)
	}

	if err := s.MaterializeRelationships(code, redeemerID); err != nil {
		// Code is consumed but relationships are missing — the acknowledged
		// partial-failure window. The caller retries (resumable path above)
		// or the reconciliation worker picks it up.
		log.Printf("[REDEEM] ⚠️ code %s consumed but materialization failed: %v", code.Code, err)
		return nil, err
	}

	log.Printf("[REDEEM] ✅ code %s consumed by %s (role=%s, org=%s)", code.Code, redeemerID, code.Role, code.OrganizationID)
	return &RedemptionResult{Code: code}, nil
}

// RepairRedemption re-applies a consumed code's side effects for the recorded
// consumer: the profile binding plus the relationship rows. Everything here is
// idempotent, so the resumable retry and the reconcile sweep can both call it
// any number of times.
func (s *AccessCodeService) RepairRedemption(code *models.AccessCode, redeemerID string) error {
	if err := s.bindRedeemerProfile(code, redeemerID); err != nil {
		return err
	}
	return s.MaterializeRelationships(code, redeemerID)
}

// MaterializeRelationships derives the rows a consumed code implies. Both
// inserts ignore uniqueness conflicts so a retry is a no-op, never an error.
//
// Athlete codes with a sport create the coach–athlete link (issuer as coach)
// plus the user–sport membership. Coach and admin codes only bind the profile
// to the organization, which bindRedeemerProfile already did.
func (s *AccessCodeService) MaterializeRelationships(code *models.AccessCode, redeemerID string) error {
	if code.Role != models.RoleAthlete || code.SportID == nil {
		return nil
	}

	link := models.CoachAthlete{
		ID:             uuid.NewString(),
		CoachID:        code.CreatedBy,
		AthleteID:      redeemerID,
		SportID:        *code.SportID,
		OrganizationID: code.OrganizationID,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return fmt.Errorf("failed to create coach-athlete link: %w", err)
	}

	membership := models.UserSport{
		ID:             uuid.NewString(),
		UserID:         redeemerID,
		SportID:        *code.SportID,
		OrganizationID: code.OrganizationID,
		Gender:         code.Gender,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
		return fmt.Errorf("failed to create user-sport membership: %w", err)
	}
	return nil
}

// bindRedeemerProfile stamps the granted role and organization onto the
// redeemer's profile. Role is only set while still pending selection; a
// profile that already picked a role keeps it.
func (s *AccessCodeService) bindRedeemerProfile(code *models.AccessCode, redeemerID string) error {
	updates := map[string]interface{}{
		"organization_id": code.OrganizationID,
	}
	if err := s.DB.Model(&models.Profile{}).
		Where("external_user_id = ?", redeemerID).
		Updates(updates).Error; err != nil {
		return err
	}
	return s.DB.Model(&models.Profile{}).
		Where("external_user_id = ? AND role = ''", redeemerID).
		Update("role", code.Role).Error
}
