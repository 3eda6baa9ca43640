package model

import "time"

// Guild represents a guild's stored configuration as written by the /setup
// command.  One row exists per Discord server.  PrimaryRoleID is the role
// whose holders count as tracked members; AdminRoleID gates the admin
// commands; ChannelID is where confirmations and event posts land.  The
// password hash guards the dashboard login and is never serialized.
type Guild struct {
	ID            string    `json:"id"`
	ChannelID     string    `json:"channel_id"`
	Color         string    `json:"color"`
	PrimaryRoleID string    `json:"primary_role_id"`
	AdminRoleID   string    `json:"admin_role_id"`
	IconURL       string    `json:"icon_url,omitempty"`
	BannerURL     string    `json:"banner_url,omitempty"`
	Title         string    `json:"title"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GuildRole is an additional (non-primary) role registered for a guild via
// /setup or /add-roles.  The reconciler derives per-member role flags from
// these rows.
type GuildRole struct {
	GuildID  string `json:"guild_id"`
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
}
