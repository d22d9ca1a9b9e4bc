package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the JWT claim set for both access and refresh tokens.
// Access tokens carry username/role/email; refresh tokens carry username and
// IsRefreshToken=true.
type TokenClaims struct {
	Username       string `json:"username"`
	Role           string `json:"role,omitempty"`
	Email          string `json:"email,omitempty"`
	IsRefreshToken bool   `json:"isRefreshToken,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is the sign-in issuance result.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
