package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/szymonsamus/gripendor/internal/handler"    // import the handlers that implement business logic
    "github.com/szymonsamus/gripendor/internal/middleware" // import middleware for JWT authentication and guild binding
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers and monitoring hit this to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterDashboard wires the dashboard API: an unauthenticated login
// endpoint that exchanges a guild password for a token, and the guild-scoped
// read endpoints behind it.  Login carries a rate limiter (it is the only
// surface open to password guessing); every read route carries three layers:
// JWT validation, the token-guild/path-guild match, and an optional Redis
// response cache supplied by the caller (pass nil to disable either).
func RegisterDashboard(e *echo.Echo, a *handler.AuthHandler, d *handler.DashboardHandler, jwtSecret string, cache, loginLimit echo.MiddlewareFunc) {
    if loginLimit != nil {
        e.POST("/login", a.Login, loginLimit)
    } else {
        e.POST("/login", a.Login)
    }

    g := e.Group("")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireGuild())
    if cache != nil {
        g.Use(cache)
    }

    g.GET("/config/:guildId", d.GetConfig)
    g.GET("/userdata/:guildId", d.GetUserData)
    g.GET("/eventdata/:guildId", d.GetEventData)
    g.GET("/attendance/:guildId", d.GetAttendance)
    g.GET("/presets/:guildId", d.GetPresets)
}
