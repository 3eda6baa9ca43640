package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/model"
)

// fakeSource serves a fixed snapshot per guild.
type fakeSource struct {
	snapshots map[string]Snapshot
	err       error
}

func (f *fakeSource) FetchGuild(ctx context.Context, guildID string) (Snapshot, error) {
	if f.err != nil {
		return Snapshot{}, f.err
	}
	return f.snapshots[guildID], nil
}

// memStore is an in-memory Store keeping the same invariants as the SQL one.
type memStore struct {
	users       map[string]string          // user id -> username
	members     map[string]map[string]bool // guild -> user ids
	memberRoles map[string]bool            // guild/user/role -> has_role
	ops         int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]string),
		members:     make(map[string]map[string]bool),
		memberRoles: make(map[string]bool),
	}
}

func (s *memStore) UpsertUser(ctx context.Context, userID, username string) error {
	s.ops++
	s.users[userID] = username
	return nil
}

func (s *memStore) UpsertMember(ctx context.Context, guildID, userID, username string) error {
	s.ops++
	if s.members[guildID] == nil {
		s.members[guildID] = make(map[string]bool)
	}
	s.members[guildID][userID] = true
	return nil
}

func (s *memStore) UpsertMemberRole(ctx context.Context, guildID, userID, roleName string, hasRole bool) error {
	s.ops++
	s.memberRoles[guildID+"/"+userID+"/"+roleName] = hasRole
	return nil
}

func (s *memStore) DeleteMembersNotIn(ctx context.Context, guildID string, keep []string) error {
	s.ops++
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for id := range s.members[guildID] {
		if !keepSet[id] {
			delete(s.members[guildID], id)
		}
	}
	return nil
}

func (s *memStore) DeleteAllMembers(ctx context.Context, guildID string) error {
	s.ops++
	delete(s.members, guildID)
	return nil
}

func (s *memStore) memberIDs(guildID string) []string {
	var ids []string
	for id := range s.members[guildID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeRoles struct{ roles []model.GuildRole }

func (f *fakeRoles) ListByGuild(ctx context.Context, guildID string) ([]model.GuildRole, error) {
	return f.roles, nil
}

type fakeGuilds struct{ guilds []model.Guild }

func (f *fakeGuilds) List(ctx context.Context) ([]model.Guild, error) { return f.guilds, nil }

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logWriter{t}, nil))
}

type logWriter struct{ t *testing.T }

func (w logWriter) Write(p []byte) (int, error) { w.t.Log(string(p)); return len(p), nil }

func guildCfg() model.Guild {
	return model.Guild{ID: "g1", PrimaryRoleID: "primary", AdminRoleID: "admin"}
}

func snapshotWith(members ...LiveMember) Snapshot {
	return Snapshot{
		Members: members,
		RoleIDs: map[string]bool{"primary": true, "tank": true, "healer": true},
	}
}

func TestReconcileGuild_TracksPrimaryRoleHolders(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(
			LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary", "tank"}},
			LiveMember{UserID: "u2", DisplayName: "Borin", RoleIDs: []string{"primary"}},
			LiveMember{UserID: "u3", DisplayName: "Cala", RoleIDs: []string{"tank"}}, // no primary
		),
	}}
	store := newMemStore()
	roles := &fakeRoles{roles: []model.GuildRole{{GuildID: "g1", RoleID: "tank", RoleName: "Tank"}}}

	r := New(src, store, roles, &fakeGuilds{}, testLogger(t))
	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Equal(t, []string{"u1", "u2"}, store.memberIDs("g1"))
	assert.True(t, store.memberRoles["g1/u1/Tank"])
	assert.False(t, store.memberRoles["g1/u2/Tank"])
	// Global user rows exist for both tracked members.
	assert.Equal(t, "Aria", store.users["u1"])
	assert.Equal(t, "Borin", store.users["u2"])
}

func TestReconcileGuild_Idempotent(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}}),
	}}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))

	r.ReconcileGuild(context.Background(), guildCfg())
	first := store.memberIDs("g1")
	firstUsers := len(store.users)

	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Equal(t, first, store.memberIDs("g1"))
	assert.Equal(t, firstUsers, len(store.users))
}

func TestReconcileGuild_RoleLossRemovesMembershipKeepsUser(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(
			LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}},
			LiveMember{UserID: "u2", DisplayName: "Borin", RoleIDs: []string{"primary"}},
		),
	}}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))
	r.ReconcileGuild(context.Background(), guildCfg())
	require.Equal(t, []string{"u1", "u2"}, store.memberIDs("g1"))

	// Borin loses the primary role.
	src.snapshots["g1"] = snapshotWith(
		LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}},
		LiveMember{UserID: "u2", DisplayName: "Borin", RoleIDs: nil},
	)
	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Equal(t, []string{"u1"}, store.memberIDs("g1"))
	assert.Equal(t, "Borin", store.users["u2"], "global user row survives")
}

func TestReconcileGuild_EmptyQualifyingSetDeletesAll(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}}),
	}}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))
	r.ReconcileGuild(context.Background(), guildCfg())
	require.Equal(t, []string{"u1"}, store.memberIDs("g1"))

	src.snapshots["g1"] = snapshotWith() // nobody qualifies anymore
	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Empty(t, store.memberIDs("g1"))
}

func TestReconcileGuild_MissingPrimaryRoleAborts(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": {
			Members: []LiveMember{{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}}},
			RoleIDs: map[string]bool{"other": true}, // primary role deleted in Discord
		},
	}}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))

	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Zero(t, store.ops, "no writes when the primary role cannot be resolved")
}

func TestReconcileGuild_FetchFailureAborts(t *testing.T) {
	src := &fakeSource{err: errors.New("guild unavailable")}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))

	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Zero(t, store.ops)
}

func TestReconcileGuild_SkipsMembersWithMissingIdentity(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(
			LiveMember{UserID: "", DisplayName: "Ghost", RoleIDs: []string{"primary"}},
			LiveMember{UserID: "u2", DisplayName: "", RoleIDs: []string{"primary"}},
			LiveMember{UserID: "u3", DisplayName: "Cala", RoleIDs: []string{"primary"}},
		),
	}}
	store := newMemStore()
	r := New(src, store, &fakeRoles{}, &fakeGuilds{}, testLogger(t))

	r.ReconcileGuild(context.Background(), guildCfg())

	assert.Equal(t, []string{"u3"}, store.memberIDs("g1"))
}

func TestReconcileAll_CoversEveryGuild(t *testing.T) {
	src := &fakeSource{snapshots: map[string]Snapshot{
		"g1": snapshotWith(LiveMember{UserID: "u1", DisplayName: "Aria", RoleIDs: []string{"primary"}}),
		"g2": snapshotWith(LiveMember{UserID: "u2", DisplayName: "Borin", RoleIDs: []string{"primary"}}),
	}}
	store := newMemStore()
	guilds := &fakeGuilds{guilds: []model.Guild{
		{ID: "g1", PrimaryRoleID: "primary"},
		{ID: "g2", PrimaryRoleID: "primary"},
	}}
	r := New(src, store, &fakeRoles{}, guilds, testLogger(t))

	r.ReconcileAll(context.Background())

	assert.Equal(t, []string{"u1"}, store.memberIDs("g1"))
	assert.Equal(t, []string{"u2"}, store.memberIDs("g2"))
}
