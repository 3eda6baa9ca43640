package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/config"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: 30 * time.Second,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
}

func TestNewLoginLimiter_NoRedisFailsOpen(t *testing.T) {
	mw := NewLoginLimiter(limiterConfig(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "in") })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewLoginLimiter_DisabledIsPassthrough(t *testing.T) {
	cfg := limiterConfig()
	cfg.Enabled = false
	mw := NewLoginLimiter(cfg, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "in") })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateKey_BucketsByIPAndRoute(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login")

	assert.Equal(t, "rl:POST/login:203.0.113.7", loginRateKey("rl", c))

	// Rotating the submitted guild id must not change the bucket; only the
	// caller's address does.
	req2 := httptest.NewRequest(http.MethodPost, "/login", nil)
	req2.RemoteAddr = "198.51.100.9:4242"
	c2 := e.NewContext(req2, httptest.NewRecorder())
	c2.SetPath("/login")

	assert.NotEqual(t, loginRateKey("rl", c), loginRateKey("rl", c2))
}
