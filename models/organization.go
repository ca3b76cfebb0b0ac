package models

// Organization owns access codes, profiles and sport associations.
type Organization struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"uniqueIndex;not null" json:"name"`
	ContactEmail string  `json:"contact_email,omitempty"`
	ContactPhone string  `json:"contact_phone,omitempty"`
	Website      string  `json:"website,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`

	Timestamps
}
