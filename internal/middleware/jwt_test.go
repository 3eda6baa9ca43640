package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/utils"
)

const testSecret = "test-secret"

// runChain pushes a request with the given bearer token through JWTAuth and
// RequireGuild against a route carrying :guildId, with a terminal handler
// that echoes the guild id JWTAuth bound to the context.
func runChain(t *testing.T, token, pathGuild string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("guildId")
	c.SetParamValues(pathGuild)

	h := JWTAuth(testSecret)(RequireGuild()(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("guild_id").(string))
	}))
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuth_ValidTokenBindsGuild(t *testing.T) {
	tok, err := utils.NewDashboardToken(testSecret, "123", 15)
	require.NoError(t, err)

	rec := runChain(t, tok.Token, "123")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123", rec.Body.String())
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec := runChain(t, "", "123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	tok, err := utils.NewDashboardToken("other-secret", "123", 15)
	require.NoError(t, err)

	rec := runChain(t, tok.Token, "123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	rec := runChain(t, "not.a.jwt", "123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireGuild_RejectsCrossGuildAccess(t *testing.T) {
	tok, err := utils.NewDashboardToken(testSecret, "123", 15)
	require.NoError(t, err)

	rec := runChain(t, tok.Token, "456")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
