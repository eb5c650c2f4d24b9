package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is the input used to mint an admin access token.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Email   string
	JTI     string
}

// AccessTokenClaims are the typed JWT claims embedded in admin tokens.
type AccessTokenClaims struct {
	AdminID uuid.UUID `json:"admin_id"`
	Email   string    `json:"email"`
	jwt.RegisteredClaims
}
