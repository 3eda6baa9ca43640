// Package reconcile keeps stored guild membership aligned with live Discord
// role membership.  The routine is idempotent: running it twice against
// unchanged Discord state produces no net row changes, so a crash mid-run
// self-heals on the next tick.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/szymonsamus/gripendor/internal/model"
)

// LiveMember is one member from a fresh Discord fetch.
type LiveMember struct {
	UserID      string
	DisplayName string   // nickname if set, else account username
	RoleIDs     []string // role ids the member currently holds
}

// Snapshot is the live guild state a reconciliation runs against.
type Snapshot struct {
	Members []LiveMember
	RoleIDs map[string]bool // role ids that exist in the guild
}

// Source produces fresh guild snapshots.  The Discord-backed implementation
// lives in the bot package; tests supply fakes.
type Source interface {
	FetchGuild(ctx context.Context, guildID string) (Snapshot, error)
}

// Store is the slice of storage the reconciler writes through.
type Store interface {
	UpsertUser(ctx context.Context, userID, username string) error
	UpsertMember(ctx context.Context, guildID, userID, username string) error
	UpsertMemberRole(ctx context.Context, guildID, userID, roleName string, hasRole bool) error
	DeleteMembersNotIn(ctx context.Context, guildID string, keep []string) error
	DeleteAllMembers(ctx context.Context, guildID string) error
}

// RoleLister reads the additional roles registered for a guild.
type RoleLister interface {
	ListByGuild(ctx context.Context, guildID string) ([]model.GuildRole, error)
}

// GuildLister enumerates configured guilds.
type GuildLister interface {
	List(ctx context.Context) ([]model.Guild, error)
}

// Reconciler re-derives the authoritative tracked-member set for each guild
// from live membership and the configured primary role, and synchronizes
// stored rows with it.
type Reconciler struct {
	source Source
	store  Store
	roles  RoleLister
	guilds GuildLister
	log    *slog.Logger
}

func New(source Source, store Store, roles RoleLister, guilds GuildLister, log *slog.Logger) *Reconciler {
	return &Reconciler{source: source, store: store, roles: roles, guilds: guilds, log: log}
}

// ReconcileGuild synchronizes one guild.  Failures are logged and abort the
// guild without returning an error to the caller: a missing guild or role is
// a configuration problem, not a process fault.
func (r *Reconciler) ReconcileGuild(ctx context.Context, cfg model.Guild) {
	snap, err := r.source.FetchGuild(ctx, cfg.ID)
	if err != nil {
		r.log.Error("guild not resolvable", "guild", cfg.ID, "error", err)
		return
	}
	if !snap.RoleIDs[cfg.PrimaryRoleID] {
		r.log.Error("primary role not found", "guild", cfg.ID, "role", cfg.PrimaryRoleID)
		return
	}

	additional, err := r.roles.ListByGuild(ctx, cfg.ID)
	if err != nil {
		r.log.Error("load registered roles", "guild", cfg.ID, "error", err)
		return
	}

	var keep []string
	for _, m := range snap.Members {
		if !hasRole(m, cfg.PrimaryRoleID) {
			continue
		}
		if m.UserID == "" || m.DisplayName == "" {
			r.log.Warn("skipping member with missing identity", "guild", cfg.ID, "user", m.UserID)
			continue
		}

		if err := r.store.UpsertUser(ctx, m.UserID, m.DisplayName); err != nil {
			r.log.Error("upsert user", "guild", cfg.ID, "user", m.UserID, "error", err)
			return
		}
		if err := r.store.UpsertMember(ctx, cfg.ID, m.UserID, m.DisplayName); err != nil {
			r.log.Error("upsert member", "guild", cfg.ID, "user", m.UserID, "error", err)
			return
		}
		for _, role := range additional {
			if err := r.store.UpsertMemberRole(ctx, cfg.ID, m.UserID, role.RoleName, hasRole(m, role.RoleID)); err != nil {
				r.log.Error("upsert member role", "guild", cfg.ID, "user", m.UserID, "role", role.RoleName, "error", err)
				return
			}
		}
		keep = append(keep, m.UserID)
	}

	// Members who lost the primary role, left, or were reconfigured away.
	// An empty qualifying set deletes all rows outright; an empty IN list is
	// not a valid query.
	if len(keep) == 0 {
		err = r.store.DeleteAllMembers(ctx, cfg.ID)
	} else {
		err = r.store.DeleteMembersNotIn(ctx, cfg.ID, keep)
	}
	if err != nil {
		r.log.Error("prune departed members", "guild", cfg.ID, "error", err)
		return
	}

	r.log.Debug("reconciled guild", "guild", cfg.ID, "tracked", len(keep))
}

// ReconcileAll runs one pass over every configured guild.
func (r *Reconciler) ReconcileAll(ctx context.Context) {
	guilds, err := r.guilds.List(ctx)
	if err != nil {
		r.log.Error("list configured guilds", "error", err)
		return
	}
	for _, g := range guilds {
		r.ReconcileGuild(ctx, g)
	}
}

// Run reconciles on a fixed interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileAll(ctx)
		}
	}
}

func hasRole(m LiveMember, roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
