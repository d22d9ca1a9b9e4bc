// Package crypto implements token issuance and verification.
package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/pkg/constants"
)

// Verification sentinels. Expired tokens and invalid tokens map to different
// HTTP responses, so the distinction must survive this layer.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// IssueAccessToken signs a 24-hour access token carrying the user identity.
func (m *TokenManager) IssueAccessToken(username, role, email string) (string, error) {
	return m.sign(&models.TokenClaims{
		Username: username,
		Role:     role,
		Email:    email,
	}, constants.AccessTokenTTL)
}

// IssueRefreshToken signs a 7-day refresh token. Refresh tokens carry only
// the username plus the refresh marker and cannot be used as access tokens.
func (m *TokenManager) IssueRefreshToken(username string) (string, error) {
	return m.sign(&models.TokenClaims{
		Username:       username,
		IsRefreshToken: true,
	}, constants.RefreshTokenTTL)
}

func (m *TokenManager) sign(claims *models.TokenClaims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Expiry is the
// only failure reported as ErrTokenExpired; everything else (bad signature,
// malformed, wrong algorithm) is ErrTokenInvalid.
func (m *TokenManager) Verify(token string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}
