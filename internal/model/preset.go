package model

import "time"

// PresetRole is one (role, required count) pair inside a preset.
type PresetRole struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// Preset is a saved party-composition template.  Data holds the role
// requirements for a single party; PartySize controls how many members each
// generated party holds.
type Preset struct {
	GuildID      string       `json:"guild_id"`
	Name         string       `json:"preset_name"`
	GameRoleName string       `json:"game_role_name"`
	GameRoleID   string       `json:"game_role_id"`
	PartySize    int          `json:"party_size"`
	Roles        []PresetRole `json:"roles"`
	CreatedAt    time.Time    `json:"created_at"`
}
