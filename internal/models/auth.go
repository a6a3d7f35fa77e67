package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and user record.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	User         User      `json:"user"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// Token use claim values. Access and refresh tokens share a signing key
// and are told apart by this claim.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// JWTClaims represents the JWT payload for access and refresh tokens.
type JWTClaims struct {
	UserID     string     `json:"user_id"`
	Role       UserRole   `json:"role"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
	TokenUse   string     `json:"token_use"`
	jwt.RegisteredClaims
}
