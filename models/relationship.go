package models

import "time"

// UserSport links a user to a sport within an organization. Unique on the
// (user, sport, organization) triple; inserts are conflict-ignoring so a
// redemption retry never errors on the duplicate.
//
// No soft delete: leaving a sport removes the row outright so the user can
// re-join without tripping the unique index.
type UserSport struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID         string    `gorm:"not null;uniqueIndex:idx_user_sport_org" json:"user_id"` // ExternalUserID
	SportID        string    `gorm:"not null;uniqueIndex:idx_user_sport_org" json:"sport_id"`
	OrganizationID string    `gorm:"not null;uniqueIndex:idx_user_sport_org" json:"organization_id"`
	Gender         string    `gorm:"type:varchar(16)" json:"gender,omitempty"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// CoachAthlete links a coach to an athlete for one sport within one
// organization. Unique on the full quadruple; created only as a side effect
// of a successful athlete code redemption.
type CoachAthlete struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CoachID        string    `gorm:"not null;uniqueIndex:idx_coach_athlete" json:"coach_id"`   // ExternalUserID
	AthleteID      string    `gorm:"not null;uniqueIndex:idx_coach_athlete" json:"athlete_id"` // ExternalUserID
	SportID        string    `gorm:"not null;uniqueIndex:idx_coach_athlete" json:"sport_id"`
	OrganizationID string    `gorm:"not null;uniqueIndex:idx_coach_athlete" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
