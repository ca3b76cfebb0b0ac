package models

// Closed role set. A profile's role stays empty until the user either picks
// one explicitly or redeems an access code that grants one.
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleAthlete = "athlete"
)

// ValidRole reports whether r is one of the closed role set.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleCoach || r == RoleAthlete
}

// Profile is the application-level identity record layered over the
// auth service's identity. Exactly one per authenticated user.
type Profile struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // auth service UUID
	DisplayName    string  `gorm:"not null" json:"display_name"`
	Email          string  `json:"email,omitempty"`
	Role           string  `gorm:"type:varchar(16);default:''" json:"role"` // '' = pending selection
	OrganizationID *string `gorm:"index" json:"organization_id,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`

	Timestamps
}
