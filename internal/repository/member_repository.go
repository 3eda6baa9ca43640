package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/szymonsamus/gripendor/internal/model"
)

// MemberRepo persists tracked users and their per-guild membership rows.
// The reconciler is the only writer of membership rows; the attendance
// recorder only bumps counters.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// UpsertUser inserts or refreshes a global user row.  Never deletes.
func (r *MemberRepo) UpsertUser(ctx context.Context, userID, username string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username)
		VALUES (?,?)
		ON DUPLICATE KEY UPDATE username = VALUES(username)`,
		userID, username)
	return err
}

// UpsertMember inserts a membership row with a zero counter, or refreshes the
// username snapshot if the row already exists.  The counter is deliberately
// left alone on conflict.
func (r *MemberRepo) UpsertMember(ctx context.Context, guildID, userID, username string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO guild_members (guild_id, user_id, username, total_count)
		VALUES (?,?,?,0)
		ON DUPLICATE KEY UPDATE username = VALUES(username)`,
		guildID, userID, username)
	return err
}

// UpsertMemberRole records whether a member currently holds a registered role.
func (r *MemberRepo) UpsertMemberRole(ctx context.Context, guildID, userID, roleName string, hasRole bool) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO guild_member_roles (guild_id, user_id, role_name, has_role)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE has_role = VALUES(has_role)`,
		guildID, userID, roleName, hasRole)
	return err
}

// DeleteMembersNotIn removes every membership row for the guild whose user id
// is not in keep.  Callers must use DeleteAllMembers for an empty keep set; an
// empty IN list is not valid SQL.
func (r *MemberRepo) DeleteMembersNotIn(ctx context.Context, guildID string, keep []string) error {
	if len(keep) == 0 {
		return r.DeleteAllMembers(ctx, guildID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, 0, len(keep)+1)
	args = append(args, guildID)
	for _, id := range keep {
		args = append(args, id)
	}
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM guild_members WHERE guild_id = ? AND user_id NOT IN ("+placeholders+")", args...)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"DELETE FROM guild_member_roles WHERE guild_id = ? AND user_id NOT IN ("+placeholders+")", args...)
	return err
}

// DeleteAllMembers removes every membership row for the guild.
func (r *MemberRepo) DeleteAllMembers(ctx context.Context, guildID string) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM guild_members WHERE guild_id = ?", guildID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM guild_member_roles WHERE guild_id = ?", guildID)
	return err
}

// IncrementTotal bumps a member's lifetime attendance counter.
func (r *MemberRepo) IncrementTotal(ctx context.Context, guildID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE guild_members
		SET total_count = total_count + 1
		WHERE guild_id = ? AND user_id = ?`,
		guildID, userID)
	return err
}

// ListByGuild returns the guild's membership rows.
func (r *MemberRepo) ListByGuild(ctx context.Context, guildID string) ([]model.Member, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT guild_id, user_id, username, total_count, updated_at
		FROM guild_members WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.GuildID, &m.UserID, &m.Username, &m.TotalCount, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListRolesByGuild returns the guild's member role flags.
func (r *MemberRepo) ListRolesByGuild(ctx context.Context, guildID string) ([]model.MemberRole, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT guild_id, user_id, role_name, has_role
		FROM guild_member_roles WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.MemberRole
	for rows.Next() {
		var mr model.MemberRole
		if err := rows.Scan(&mr.GuildID, &mr.UserID, &mr.RoleName, &mr.HasRole); err != nil {
			return nil, err
		}
		roles = append(roles, mr)
	}
	return roles, rows.Err()
}
