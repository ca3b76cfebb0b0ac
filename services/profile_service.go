package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"team-manage-system/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	bootstrapAttempts = 3
	bootstrapDelay    = 200 * time.Millisecond
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// DeriveDisplayName builds a presentable name from account metadata, falling
// back to the email local-part ("jane.doe@x.com" → "Jane Doe").
func DeriveDisplayName(metadataName, email string) string {
	if name := strings.TrimSpace(metadataName); name != "" {
		return name
	}
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return "New Member"
	}
	// A fresh Caser per call: they carry transformer state and aren't safe
	// for concurrent use.
	return cases.Title(language.English).String(local)
}

// EnsureProfile creates the minimal profile for a first-time identity.
// Idempotent: an existing row is returned untouched. Transient store failures
// are retried up to bootstrapAttempts; if all fail, a placeholder row is
// force-inserted so the identity is never left without a profile. The caller
// (bootstrap runs out-of-band relative to sign-up) only ever sees the row —
// failures are logged, not surfaced.
func (s *ProfileService) EnsureProfile(externalUserID, email, metadataName string) (*models.Profile, error) {
	if externalUserID == "" {
		return nil, fmt.Errorf("%w: external_user_id is required", ErrValidation)
	}

	var lastErr error
	for attempt := 1; attempt <= bootstrapAttempts; attempt++ {
		prof, err := s.ensureOnce(externalUserID, email, DeriveDisplayName(metadataName, email))
		if err == nil {
			return prof, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
		log.Printf("[BOOTSTRAP] ⚠️ attempt %d/%d failed for %s: %v", attempt, bootstrapAttempts, externalUserID, err)
		time.Sleep(bootstrapDelay)
	}

	// Degrade to a placeholder row rather than leaving the identity bare.
	log.Printf("[BOOTSTRAP] ❌ all attempts failed for %s (%v), inserting placeholder", externalUserID, lastErr)
	placeholder := models.Profile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		DisplayName:    "New Member",
	}
	if err := s.DB.Create(&placeholder).Error; err != nil {
		return nil, fmt.Errorf("placeholder insert failed: %w", err)
	}
	return &placeholder, nil
}

func (s *ProfileService) ensureOnce(externalUserID, email, displayName string) (*models.Profile, error) {
	var prof models.Profile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error
	if err == nil {
		return &prof, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	prof = models.Profile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		DisplayName:    displayName,
		Email:          email,
	}
	if createErr := s.DB.Create(&prof).Error; createErr != nil {
		// A concurrent bootstrap may have won the unique index on
		// external_user_id; re-read before treating this as a failure.
		var existing models.Profile
		if reread := s.DB.Where("external_user_id = ?", externalUserID).First(&existing).Error; reread == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &prof, nil
}

// GetByExternalID fetches a profile by the auth service identity.
func (s *ProfileService) GetByExternalID(externalUserID string) (*models.Profile, error) {
	var prof models.Profile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		return nil, err
	}
	return &prof, nil
}

// SelectRole sets the role on a profile that hasn't picked one yet. The role
// set is closed and the selection is one-time; redemption flows may also set
// it as a side effect.
func (s *ProfileService) SelectRole(externalUserID, role string) (*models.Profile, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be one of admin, coach, athlete", ErrValidation)
	}
	res := s.DB.Model(&models.Profile{}).
		Where("external_user_id = ? AND role = ''", externalUserID).
		Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either no profile or the role is already set; disambiguate.
		prof, err := s.GetByExternalID(externalUserID)
		if err != nil {
			return nil, err
		}
		if prof.Role != role {
			return nil, fmt.Errorf("%w: role already selected", ErrValidation)
		}
		return prof, nil
	}
	return s.GetByExternalID(externalUserID)
}

// UpdateProfile applies display-name/avatar changes.
func (s *ProfileService) UpdateProfile(externalUserID string, displayName string, avatarURL *string) (*models.Profile, error) {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(displayName); name != "" {
		updates["display_name"] = name
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if len(updates) > 0 {
		res := s.DB.Model(&models.Profile{}).
			Where("external_user_id = ?", externalUserID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return s.GetByExternalID(externalUserID)
}
