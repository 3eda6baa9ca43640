package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates the schema when it does not exist yet.  Discord snowflake
// ids are stored as VARCHAR(20); they exceed the signed 64-bit range in
// JavaScript clients, so the dashboard receives them as strings either way.
func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS guilds (
			id VARCHAR(20) PRIMARY KEY,
			channel_id VARCHAR(20) NOT NULL,
			color VARCHAR(9) NOT NULL DEFAULT '#0099ff',
			primary_role_id VARCHAR(20) NOT NULL,
			admin_role_id VARCHAR(20) NOT NULL,
			icon_url TEXT,
			banner_url TEXT,
			title VARCHAR(25) NOT NULL,
			password_hash VARCHAR(72) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(20) PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS guild_members (
			guild_id VARCHAR(20) NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			username VARCHAR(100) NOT NULL,
			total_count INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (guild_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS guild_roles (
			guild_id VARCHAR(20) NOT NULL,
			role_id VARCHAR(20) NOT NULL,
			role_name VARCHAR(100) NOT NULL,
			PRIMARY KEY (guild_id, role_id)
		)`,
		`CREATE TABLE IF NOT EXISTS guild_member_roles (
			guild_id VARCHAR(20) NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			role_name VARCHAR(100) NOT NULL,
			has_role BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (guild_id, user_id, role_name)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			guild_id VARCHAR(20) NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			username VARCHAR(100) NOT NULL,
			date DATE NOT NULL,
			count INT NOT NULL DEFAULT 1,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (guild_id, user_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			guild_id VARCHAR(20) NOT NULL,
			game_name VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			channel_id VARCHAR(20) NOT NULL,
			summary VARCHAR(250) NOT NULL,
			description TEXT NOT NULL,
			event_date DATETIME NOT NULL,
			thumbnail_url TEXT,
			image_urls TEXT,
			message_id VARCHAR(20),
			debrief TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_guild_name (guild_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS event_rsvps (
			event_id BIGINT UNSIGNED NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			response ENUM('yes','no') NOT NULL,
			reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (event_id, user_id),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS presets (
			guild_id VARCHAR(20) NOT NULL,
			preset_name VARCHAR(40) NOT NULL,
			game_role_name VARCHAR(100) NOT NULL,
			game_role_id VARCHAR(20) NOT NULL,
			party_size INT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (guild_id, preset_name)
		)`,
		`CREATE INDEX idx_events_guild_date ON events (guild_id, event_date)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			// Index creation is not idempotent on MySQL; duplicate-key-name
			// errors (1061) on rerun are fine.
			if isDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func isDuplicateKeyName(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1061")
}
