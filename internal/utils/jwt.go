package utils // package utils provides helpers for dashboard token creation

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// DashboardToken represents a signed JWT granting read access to one guild's
// dashboard data.  The Token field contains the JWT string.  Exp stores the
// expiration timestamp.  Tokens are short-lived and presented as a bearer
// token on the query surface.
type DashboardToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewDashboardToken builds and signs an HS256 JWT for a guild.  The JWT
// includes standard claims: subject (sub, the guild snowflake), expiration
// (exp) and issued at (iat).  There is no refresh flow; the dashboard logs
// in again when the token expires.
func NewDashboardToken(secret, guildID string, ttlMin int) (DashboardToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": guildID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return DashboardToken{}, err
	}
	return DashboardToken{Token: signed, Exp: exp}, nil
}
