// Package handler exposes HTTP handlers for the dashboard API.  This file
// defines the guild-scoped read endpoints the frontend polls.  All of them
// sit behind JWT auth plus the guild-binding middleware, so by the time a
// handler runs the caller is known to hold a token for the guild in the path.
package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/szymonsamus/gripendor/internal/model"
)

// Narrow repository views consumed by the dashboard reads.  Handlers depend
// on behaviour, not on concrete repo types, so tests can substitute fakes.

type RoleLister interface {
    ListByGuild(ctx context.Context, guildID string) ([]model.GuildRole, error)
}

type MemberLister interface {
    ListByGuild(ctx context.Context, guildID string) ([]model.Member, error)
    ListRolesByGuild(ctx context.Context, guildID string) ([]model.MemberRole, error)
}

type EventLister interface {
    ListByGuild(ctx context.Context, guildID string) ([]model.Event, error)
}

type AttendanceLister interface {
    ListByGuild(ctx context.Context, guildID string) ([]model.Attendance, error)
}

type PresetLister interface {
    ListByGuild(ctx context.Context, guildID string) ([]model.Preset, error)
}

// DashboardHandler aggregates the repositories backing the read endpoints.
type DashboardHandler struct {
    Guilds     GuildGetter
    Roles      RoleLister
    Members    MemberLister
    Events     EventLister
    Attendance AttendanceLister
    Presets    PresetLister
}

func NewDashboardHandler(g GuildGetter, r RoleLister, m MemberLister, e EventLister, a AttendanceLister, p PresetLister) *DashboardHandler {
    return &DashboardHandler{Guilds: g, Roles: r, Members: m, Events: e, Attendance: a, Presets: p}
}

// guildConfigResp is the sanitized guild configuration shown to the frontend.
// Snowflake role ids stay internal; the dashboard only needs role names.
type guildConfigResp struct {
    ID        string   `json:"id"`
    Title     string   `json:"title"`
    Color     string   `json:"color"`
    IconURL   string   `json:"icon_url,omitempty"`
    BannerURL string   `json:"banner_url,omitempty"`
    Roles     []string `json:"roles"`
}

// memberResp is one row of the user table: identity, lifetime attendance
// count and which of the guild's registered roles the member holds.
type memberResp struct {
    UserID     string   `json:"user_id"`
    Username   string   `json:"name"`
    TotalCount int      `json:"total_count"`
    Roles      []string `json:"roles"`
}

// guildFromPath validates the :guildId path parameter and loads the guild
// row.  Every read endpoint shares this shape: 400 for a malformed id, 404
// for a guild the bot has never been set up in.
func (h *DashboardHandler) guildFromPath(c echo.Context) (model.Guild, bool) {
    id := c.Param("guildId")
    if _, err := strconv.ParseUint(id, 10, 64); err != nil {
        _ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guild id"})
        return model.Guild{}, false
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    g, err := h.Guilds.Get(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            _ = c.JSON(http.StatusNotFound, echo.Map{"error": "guild not found"})
        } else {
            _ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        return model.Guild{}, false
    }
    return g, true
}

// GetConfig returns the guild's dashboard configuration and registered role
// names.
func (h *DashboardHandler) GetConfig(c echo.Context) error {
    g, ok := h.guildFromPath(c)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    roles, err := h.Roles.ListByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    names := make([]string, 0, len(roles))
    for _, r := range roles {
        names = append(names, r.RoleName)
    }

    return c.JSON(http.StatusOK, guildConfigResp{
        ID:        g.ID,
        Title:     g.Title,
        Color:     g.Color,
        IconURL:   g.IconURL,
        BannerURL: g.BannerURL,
        Roles:     names,
    })
}

// GetUserData returns the guild's tracked members with lifetime attendance
// counts and per-member role flags folded in.
func (h *DashboardHandler) GetUserData(c echo.Context) error {
    g, ok := h.guildFromPath(c)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    members, err := h.Members.ListByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    flags, err := h.Members.ListRolesByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    // Fold held roles per user; only flags currently set count.
    held := make(map[string][]string)
    for _, f := range flags {
        if f.HasRole {
            held[f.UserID] = append(held[f.UserID], f.RoleName)
        }
    }

    out := make([]memberResp, 0, len(members))
    for _, m := range members {
        roles := held[m.UserID]
        if roles == nil {
            roles = []string{}
        }
        out = append(out, memberResp{
            UserID:     m.UserID,
            Username:   m.Username,
            TotalCount: m.TotalCount,
            Roles:      roles,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEventData returns the guild's events, newest first.
func (h *DashboardHandler) GetEventData(c echo.Context) error {
    g, ok := h.guildFromPath(c)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    events, err := h.Events.ListByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if events == nil {
        events = []model.Event{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// GetAttendance returns the guild's per-date attendance rows.
func (h *DashboardHandler) GetAttendance(c echo.Context) error {
    g, ok := h.guildFromPath(c)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Attendance.ListByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if rows == nil {
        rows = []model.Attendance{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// GetPresets returns the guild's saved party presets.
func (h *DashboardHandler) GetPresets(c echo.Context) error {
    g, ok := h.guildFromPath(c)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    presets, err := h.Presets.ListByGuild(ctx, g.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if presets == nil {
        presets = []model.Preset{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": presets})
}
