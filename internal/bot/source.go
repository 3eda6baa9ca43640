package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/reconcile"
)

// discordRequestOptions threads a context through discordgo REST calls.
func discordRequestOptions(ctx context.Context) []discordgo.RequestOption {
	return []discordgo.RequestOption{discordgo.WithContext(ctx)}
}

// memberPageSize is the Discord API maximum for one GuildMembers page.
const memberPageSize = 1000

// FetchGuild implements reconcile.Source: a fresh snapshot of the guild's
// roles and full member list, paginated through the REST API rather than the
// gateway cache so the reconciler never acts on stale membership.
func (b *Bot) FetchGuild(ctx context.Context, guildID string) (reconcile.Snapshot, error) {
	roles, err := b.session.GuildRoles(guildID, discordRequestOptions(ctx)...)
	if err != nil {
		return reconcile.Snapshot{}, fmt.Errorf("fetch roles for guild %s: %w", guildID, err)
	}
	snap := reconcile.Snapshot{RoleIDs: make(map[string]bool, len(roles))}
	for _, r := range roles {
		snap.RoleIDs[r.ID] = true
	}

	after := ""
	for {
		page, err := b.session.GuildMembers(guildID, after, memberPageSize, discordRequestOptions(ctx)...)
		if err != nil {
			return reconcile.Snapshot{}, fmt.Errorf("fetch members for guild %s: %w", guildID, err)
		}
		for _, m := range page {
			if m.User == nil {
				continue
			}
			display := m.Nick
			if display == "" {
				display = m.User.Username
			}
			snap.Members = append(snap.Members, reconcile.LiveMember{
				UserID:      m.User.ID,
				DisplayName: display,
				RoleIDs:     m.Roles,
			})
			after = m.User.ID
		}
		if len(page) < memberPageSize {
			break
		}
	}
	return snap, nil
}
