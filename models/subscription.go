package models

import "time"

// Subscription statuses mirrored from the external payment processor.
const (
	SubStatusTrialing = "trialing"
	SubStatusActive   = "active"
	SubStatusPastDue  = "past_due"
	SubStatusCanceled = "canceled"
)

// OrgSubscription is the billing display record for an organization. Payment
// processing itself happens in the external processor; this row only mirrors
// what the portal's billing page shows.
type OrgSubscription struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OrganizationID string `gorm:"uniqueIndex;not null" json:"organization_id"`
	Plan           string `gorm:"type:varchar(32);not null" json:"plan"` // e.g., "starter", "club", "league"
	Status         string `gorm:"type:varchar(16);default:'trialing'" json:"status"`

	CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
	ProviderCustomerID     string     `json:"provider_customer_id,omitempty"`
	ProviderSubscriptionID string     `json:"provider_subscription_id,omitempty"`

	Timestamps
}
