package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // sentinel errors from SQL lookups
    "net/http"     // HTTP status codes and primitives
    "strconv"      // snowflake validation
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/szymonsamus/gripendor/internal/config" // app configuration
    "github.com/szymonsamus/gripendor/internal/model"  // stored guild row
    "github.com/szymonsamus/gripendor/internal/utils"  // helper functions (hashing, token issuing)
)

// GuildGetter is the slice of the guild repository the auth endpoint needs.
type GuildGetter interface {
    Get(ctx context.Context, guildID string) (model.Guild, error)
}

// AuthHandler bundles dependencies for the dashboard login endpoint.
type AuthHandler struct {
    Cfg    config.Config
    Guilds GuildGetter
}

func NewAuthHandler(cfg config.Config, g GuildGetter) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Guilds: g}
}

// ----- DTOs -----

type loginReq struct {
    GuildID  string `json:"guild_id"`
    Password string `json:"password"`
}

type loginResp struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
    GuildID string    `json:"guild_id"`
}

// Login verifies a guild's dashboard password and issues a guild-bound
// access token.  The guild id must be a numeric Discord snowflake; unknown
// guilds and wrong passwords both answer 401 so callers cannot probe which
// guild ids exist.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.GuildID = strings.TrimSpace(req.GuildID)
    if req.GuildID == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "guild_id/password required"})
    }
    if _, err := strconv.ParseUint(req.GuildID, 10, 64); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "guild_id must be numeric"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    g, err := h.Guilds.Get(ctx, req.GuildID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !utils.VerifyPassword(g.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    tok, err := utils.NewDashboardToken(h.Cfg.JWTSecret, g.ID, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusOK, loginResp{Token: tok.Token, Expires: tok.Exp, GuildID: g.ID})
}
