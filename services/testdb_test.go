package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The production schema comes from AutoMigrate against Postgres; the uuid
// column defaults there don't parse under sqlite, so tests lay the same
// tables down explicitly. Every insert sets its id in code anyway.
var testSchema = []string{
	`CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		contact_email TEXT,
		contact_phone TEXT,
		website TEXT,
		logo_url TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		external_user_id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		email TEXT,
		role TEXT DEFAULT '',
		organization_id TEXT,
		avatar_url TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE sports (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		logo_url TEXT,
		is_active BOOLEAN DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE access_codes (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		organization_id TEXT NOT NULL,
		role TEXT NOT NULL,
		sport_id TEXT,
		gender TEXT,
		created_by TEXT NOT NULL,
		used_at DATETIME,
		used_by TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE user_sports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		sport_id TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		gender TEXT,
		created_at DATETIME,
		UNIQUE (user_id, sport_id, organization_id)
	)`,
	`CREATE TABLE coach_athletes (
		id TEXT PRIMARY KEY,
		coach_id TEXT NOT NULL,
		athlete_id TEXT NOT NULL,
		sport_id TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (coach_id, athlete_id, sport_id, organization_id)
	)`,
	`CREATE TABLE org_subscriptions (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL UNIQUE,
		plan TEXT NOT NULL,
		status TEXT DEFAULT 'trialing',
		current_period_end DATETIME,
		provider_customer_id TEXT,
		provider_subscription_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Single connection keeps the in-memory database alive and serializes
	// statements the way the production pool's row-level locks would.
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range testSchema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}
