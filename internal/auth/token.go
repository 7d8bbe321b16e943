package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims describes the display fields the backend puts in its tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is what the dashboard shows about the signed-in operator.
type Identity struct {
	Email     string
	Role      string
	ExpiresAt *time.Time
}

// ParseIdentity decodes the token's claims without verifying the signature;
// the dashboard cannot hold the backend's key and only displays the result.
// Opaque tokens yield an empty Identity.
func ParseIdentity(token string) Identity {
	if token == "" {
		return Identity{}
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}
	}
	id := Identity{Email: claims.Email, Role: claims.Role}
	if claims.Email == "" {
		id.Email = claims.Subject
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		id.ExpiresAt = &exp
	}
	return id
}
