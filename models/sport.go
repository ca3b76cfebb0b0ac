package models

// Sport is one entry of the catalog backing the per-sport pages.
type Sport struct {
	ID          string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"` // e.g., "beach-volleyball"
	Description string  `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	Timestamps
}
