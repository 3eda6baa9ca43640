package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/config"
	"github.com/szymonsamus/gripendor/internal/model"
	"github.com/szymonsamus/gripendor/internal/utils"
)

// fakeGuilds serves guild rows from a map, sql.ErrNoRows otherwise.
type fakeGuilds struct {
	guilds map[string]model.Guild
	err    error
}

func (f *fakeGuilds) Get(ctx context.Context, guildID string) (model.Guild, error) {
	if f.err != nil {
		return model.Guild{}, f.err
	}
	g, ok := f.guilds[guildID]
	if !ok {
		return model.Guild{}, sql.ErrNoRows
	}
	return g, nil
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: 4}
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Login(c))
	return rec
}

func guildWithPassword(t *testing.T, id, password string) model.Guild {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return model.Guild{ID: id, PasswordHash: hash}
}

func TestLogin_Success(t *testing.T) {
	guilds := &fakeGuilds{guilds: map[string]model.Guild{
		"123": guildWithPassword(t, "123", "open sesame"),
	}}
	h := NewAuthHandler(testConfig(), guilds)

	rec := postLogin(t, h, `{"guild_id":"123","password":"open sesame"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "123", resp.GuildID)
}

func TestLogin_WrongPassword(t *testing.T) {
	guilds := &fakeGuilds{guilds: map[string]model.Guild{
		"123": guildWithPassword(t, "123", "open sesame"),
	}}
	h := NewAuthHandler(testConfig(), guilds)

	rec := postLogin(t, h, `{"guild_id":"123","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_UnknownGuildSameAsWrongPassword(t *testing.T) {
	h := NewAuthHandler(testConfig(), &fakeGuilds{guilds: map[string]model.Guild{}})

	rec := postLogin(t, h, `{"guild_id":"999","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewAuthHandler(testConfig(), &fakeGuilds{})

	assert.Equal(t, http.StatusBadRequest, postLogin(t, h, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postLogin(t, h, `{"guild_id":"123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postLogin(t, h, `{"password":"x"}`).Code)
}

func TestLogin_NonNumericGuildID(t *testing.T) {
	h := NewAuthHandler(testConfig(), &fakeGuilds{})

	rec := postLogin(t, h, `{"guild_id":"not-a-snowflake","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
