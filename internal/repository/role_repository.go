package repository

import (
	"context"
	"database/sql"

	"github.com/szymonsamus/gripendor/internal/model"
)

// RoleRepo persists the additional roles registered for a guild.  The
// reconciler reads these to compute per-member role flags and the party
// builder uses their names as slot labels.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Save registers a role for a guild.  Re-registering an existing role only
// refreshes its name snapshot.
func (r *RoleRepo) Save(ctx context.Context, guildID, roleID, roleName string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO guild_roles (guild_id, role_id, role_name)
		VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE role_name = VALUES(role_name)`,
		guildID, roleID, roleName)
	return err
}

// ListByGuild returns the guild's registered roles.
func (r *RoleRepo) ListByGuild(ctx context.Context, guildID string) ([]model.GuildRole, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT guild_id, role_id, role_name FROM guild_roles WHERE guild_id = ?", guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.GuildRole
	for rows.Next() {
		var gr model.GuildRole
		if err := rows.Scan(&gr.GuildID, &gr.RoleID, &gr.RoleName); err != nil {
			return nil, err
		}
		roles = append(roles, gr)
	}
	return roles, rows.Err()
}
