package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/model"
)

type fakeRoles struct{ roles []model.GuildRole }

func (f *fakeRoles) ListByGuild(ctx context.Context, guildID string) ([]model.GuildRole, error) {
	return f.roles, nil
}

type fakeMembers struct {
	members []model.Member
	flags   []model.MemberRole
}

func (f *fakeMembers) ListByGuild(ctx context.Context, guildID string) ([]model.Member, error) {
	return f.members, nil
}

func (f *fakeMembers) ListRolesByGuild(ctx context.Context, guildID string) ([]model.MemberRole, error) {
	return f.flags, nil
}

type fakeEvents struct{ events []model.Event }

func (f *fakeEvents) ListByGuild(ctx context.Context, guildID string) ([]model.Event, error) {
	return f.events, nil
}

type fakeAttendance struct{ rows []model.Attendance }

func (f *fakeAttendance) ListByGuild(ctx context.Context, guildID string) ([]model.Attendance, error) {
	return f.rows, nil
}

type fakePresets struct{ presets []model.Preset }

func (f *fakePresets) ListByGuild(ctx context.Context, guildID string) ([]model.Preset, error) {
	return f.presets, nil
}

func testDashboard(guilds GuildGetter) *DashboardHandler {
	return NewDashboardHandler(guilds,
		&fakeRoles{roles: []model.GuildRole{{GuildID: "123", RoleID: "r1", RoleName: "Tank"}}},
		&fakeMembers{
			members: []model.Member{{GuildID: "123", UserID: "u1", Username: "Aria", TotalCount: 4}},
			flags: []model.MemberRole{
				{GuildID: "123", UserID: "u1", RoleName: "Tank", HasRole: true},
				{GuildID: "123", UserID: "u1", RoleName: "Healer", HasRole: false},
			},
		},
		&fakeEvents{},
		&fakeAttendance{rows: []model.Attendance{{GuildID: "123", UserID: "u1", Username: "Aria", Date: "2026-08-30", Count: 2}}},
		&fakePresets{},
	)
}

func getPath(t *testing.T, h func(echo.Context) error, guildID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("guildId")
	c.SetParamValues(guildID)
	require.NoError(t, h(c))
	return rec
}

func knownGuilds() *fakeGuilds {
	return &fakeGuilds{guilds: map[string]model.Guild{
		"123": {ID: "123", Title: "Dread Corsairs", Color: "#F19143", IconURL: "https://cdn.example/icon.png"},
	}}
}

func TestGetConfig_ReturnsSanitizedGuild(t *testing.T) {
	h := testDashboard(knownGuilds())
	rec := getPath(t, h.GetConfig, "123")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp guildConfigResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dread Corsairs", resp.Title)
	assert.Equal(t, "#F19143", resp.Color)
	assert.Equal(t, []string{"Tank"}, resp.Roles)
	assert.NotContains(t, rec.Body.String(), "password", "hash never leaves the API")
}

func TestGetConfig_UnknownGuild404(t *testing.T) {
	h := testDashboard(&fakeGuilds{guilds: map[string]model.Guild{}})
	rec := getPath(t, h.GetConfig, "999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConfig_InvalidGuildID400(t *testing.T) {
	h := testDashboard(knownGuilds())
	rec := getPath(t, h.GetConfig, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserData_FoldsHeldRolesOnly(t *testing.T) {
	h := testDashboard(knownGuilds())
	rec := getPath(t, h.GetUserData, "123")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []memberResp `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Aria", resp.Items[0].Username)
	assert.Equal(t, 4, resp.Items[0].TotalCount)
	assert.Equal(t, []string{"Tank"}, resp.Items[0].Roles, "unset flags are not reported")
}

func TestGetAttendance_ReturnsRows(t *testing.T) {
	h := testDashboard(knownGuilds())
	rec := getPath(t, h.GetAttendance, "123")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []model.Attendance `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2026-08-30", resp.Items[0].Date)
	assert.Equal(t, 2, resp.Items[0].Count)
}

func TestListEndpoints_EmptyIsOKWithEmptyItems(t *testing.T) {
	h := testDashboard(knownGuilds())

	for name, fn := range map[string]func(echo.Context) error{
		"eventdata": h.GetEventData,
		"presets":   h.GetPresets,
	} {
		rec := getPath(t, fn, "123")
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"items":[]`, name)
	}
}
