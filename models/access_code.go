package models

import "time"

// AccessCode is a single-use invitation token binding a role, an organization
// and optionally a sport/gender to whoever redeems it.
//
// Lifecycle: issued → consumed. UsedAt transitions null → non-null at most
// once (conditional update guarded on "used_at IS NULL") and is never cleared.
type AccessCode struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code           string  `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"` // e.g., "AB-123-CD"
	OrganizationID string  `gorm:"index;not null" json:"organization_id"`
	Role           string  `gorm:"type:varchar(16);not null" json:"role"` // role granted on redemption
	SportID        *string `gorm:"index" json:"sport_id,omitempty"`
	Gender         string  `gorm:"type:varchar(16)" json:"gender,omitempty"`
	CreatedBy      string  `gorm:"index;not null" json:"created_by"` // issuer's ExternalUserID

	UsedAt *time.Time `gorm:"index" json:"used_at,omitempty"`
	UsedBy *string    `json:"used_by,omitempty"` // consumer's ExternalUserID

	Timestamps
}

// Used reports whether the code has been consumed.
func (a *AccessCode) Used() bool {
	return a.UsedAt != nil
}
