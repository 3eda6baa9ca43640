package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a guild's dashboard password with bcrypt.  A cost
// outside bcrypt's valid range falls back to the library default rather than
// erroring; /setup should never fail because of a misconfigured cost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored dashboard hash.
// A malformed hash verifies as false, the same as a wrong password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
