package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/szymonsamus/gripendor/internal/model"
)

// PresetRepo persists party-composition presets.  The role requirements are
// stored as a JSON document, matching the open-ended shape of the data.
type PresetRepo struct{ DB *sql.DB }

func NewPresetRepo(db *sql.DB) *PresetRepo { return &PresetRepo{DB: db} }

type presetData struct {
	Roles []model.PresetRole `json:"roles"`
}

// Save inserts a preset or overwrites the existing (guild, name) row.
func (r *PresetRepo) Save(ctx context.Context, p model.Preset) error {
	data, err := json.Marshal(presetData{Roles: p.Roles})
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO presets (guild_id, preset_name, game_role_name, game_role_id, party_size, data)
		VALUES (?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			game_role_name = VALUES(game_role_name),
			game_role_id = VALUES(game_role_id),
			party_size = VALUES(party_size),
			data = VALUES(data),
			created_at = NOW()`,
		p.GuildID, p.Name, p.GameRoleName, p.GameRoleID, p.PartySize, string(data))
	return err
}

// Get fetches a preset by guild and name.
func (r *PresetRepo) Get(ctx context.Context, guildID, name string) (model.Preset, error) {
	var (
		p   model.Preset
		raw string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT guild_id, preset_name, game_role_name, game_role_id, party_size, data, created_at
		FROM presets WHERE guild_id = ? AND preset_name = ? LIMIT 1`,
		guildID, name).
		Scan(&p.GuildID, &p.Name, &p.GameRoleName, &p.GameRoleID, &p.PartySize, &raw, &p.CreatedAt)
	if err != nil {
		return model.Preset{}, err
	}
	var data presetData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return model.Preset{}, err
	}
	p.Roles = data.Roles
	return p, nil
}

// ListByGuild returns the guild's presets.
func (r *PresetRepo) ListByGuild(ctx context.Context, guildID string) ([]model.Preset, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT guild_id, preset_name, game_role_name, game_role_id, party_size, data, created_at
		FROM presets WHERE guild_id = ?
		ORDER BY preset_name`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []model.Preset
	for rows.Next() {
		var (
			p   model.Preset
			raw string
		)
		if err := rows.Scan(&p.GuildID, &p.Name, &p.GameRoleName, &p.GameRoleID, &p.PartySize, &raw, &p.CreatedAt); err != nil {
			return nil, err
		}
		var data presetData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, err
		}
		p.Roles = data.Roles
		presets = append(presets, p)
	}
	return presets, rows.Err()
}
