package model

import "time"

// User is a globally tracked Discord user.  Rows are created or refreshed
// whenever the user is seen during reconciliation and never deleted, so a
// user keeps their identity row after leaving every tracked guild.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a per-guild membership row.  It exists only while the user holds
// the guild's primary role; the reconciler deletes rows for users who no
// longer qualify.  TotalCount is the lifetime attendance counter.
type Member struct {
	GuildID    string    `json:"guild_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	TotalCount int       `json:"total_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MemberRole records whether a member currently holds one of the guild's
// registered additional roles.  Flags are recomputed on every reconciliation.
type MemberRole struct {
	GuildID  string `json:"guild_id"`
	UserID   string `json:"user_id"`
	RoleName string `json:"role_name"`
	HasRole  bool   `json:"has_role"`
}

// Attendance is one recorded sighting set for a (guild, user, date) triple.
// Count increments each time the member is matched again on the same date.
type Attendance struct {
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
