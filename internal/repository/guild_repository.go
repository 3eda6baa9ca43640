package repository

import (
	"context"
	"database/sql"

	"github.com/szymonsamus/gripendor/internal/model"
)

// GuildRepo persists per-guild configuration written by /setup and
// /customise-dashboard.
type GuildRepo struct{ DB *sql.DB }

func NewGuildRepo(db *sql.DB) *GuildRepo { return &GuildRepo{DB: db} }

// Upsert inserts or fully overwrites a guild's configuration.  Keyed on the
// guild snowflake, so /setup can be re-run at any time.
func (r *GuildRepo) Upsert(ctx context.Context, g model.Guild) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO guilds (id, channel_id, color, primary_role_id, admin_role_id, icon_url, banner_url, title, password_hash)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			channel_id = VALUES(channel_id),
			color = VALUES(color),
			primary_role_id = VALUES(primary_role_id),
			admin_role_id = VALUES(admin_role_id),
			icon_url = VALUES(icon_url),
			banner_url = VALUES(banner_url),
			title = VALUES(title),
			password_hash = VALUES(password_hash)`,
		g.ID, g.ChannelID, g.Color, g.PrimaryRoleID, g.AdminRoleID,
		nullIfEmpty(g.IconURL), nullIfEmpty(g.BannerURL), g.Title, g.PasswordHash)
	return err
}

// UpdateCustomisation overwrites only the dashboard presentation columns.
// Empty arguments leave the stored value untouched.
func (r *GuildRepo) UpdateCustomisation(ctx context.Context, guildID, color, iconURL, bannerURL string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE guilds
		SET color = COALESCE(NULLIF(?, ''), color),
		    icon_url = COALESCE(NULLIF(?, ''), icon_url),
		    banner_url = COALESCE(NULLIF(?, ''), banner_url)
		WHERE id = ?`,
		color, iconURL, bannerURL, guildID)
	return err
}

// Get fetches a guild's configuration.  Returns sql.ErrNoRows when the guild
// has never run /setup.
func (r *GuildRepo) Get(ctx context.Context, guildID string) (model.Guild, error) {
	var (
		g      model.Guild
		icon   sql.NullString
		banner sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, channel_id, color, primary_role_id, admin_role_id, icon_url, banner_url, title, password_hash, created_at, updated_at
		FROM guilds WHERE id = ? LIMIT 1`, guildID).
		Scan(&g.ID, &g.ChannelID, &g.Color, &g.PrimaryRoleID, &g.AdminRoleID,
			&icon, &banner, &g.Title, &g.PasswordHash, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return model.Guild{}, err
	}
	g.IconURL = icon.String
	g.BannerURL = banner.String
	return g, nil
}

// List returns every configured guild.  The reconciler iterates this set on
// each tick.
func (r *GuildRepo) List(ctx context.Context) ([]model.Guild, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, channel_id, color, primary_role_id, admin_role_id, icon_url, banner_url, title, password_hash, created_at, updated_at
		FROM guilds`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guilds []model.Guild
	for rows.Next() {
		var (
			g      model.Guild
			icon   sql.NullString
			banner sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.ChannelID, &g.Color, &g.PrimaryRoleID, &g.AdminRoleID,
			&icon, &banner, &g.Title, &g.PasswordHash, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.IconURL = icon.String
		g.BannerURL = banner.String
		guilds = append(guilds, g)
	}
	return guilds, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
