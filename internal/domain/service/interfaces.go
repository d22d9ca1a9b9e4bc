package service

import (
	"context"
	"time"

	"github.com/embedpro/pids-licensing/internal/domain/models"
)

// DuplicateGuard suppresses rapid identical create submissions. Acquire
// returns false when the fingerprint was seen inside the guard window.
type DuplicateGuard interface {
	Acquire(fingerprint string) bool
	Release(fingerprint string)
}

// TokenBlacklist tracks revoked tokens until their natural expiry.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// CredentialStore is the user credential port backed by the secret store.
type CredentialStore interface {
	// Load returns the full credential set, bootstrapping a default
	// administrator when no secret exists yet.
	Load(ctx context.Context) (models.CredentialSet, error)

	// Save replaces the stored credential set and invalidates any cache.
	Save(ctx context.Context, set models.CredentialSet) error
}

// TokenManager issues and verifies signed tokens.
type TokenManager interface {
	IssueAccessToken(username, role, email string) (string, error)
	IssueRefreshToken(username string) (string, error)

	// Verify parses and validates a token. Expired and otherwise-invalid
	// tokens fail with distinct sentinels so callers can map them to
	// different responses.
	Verify(token string) (*models.TokenClaims, error)
}

// Notification is one asynchronous credential-delivery job.
type Notification struct {
	Recipient    string
	CustomerName string
	SystemID     string
	Password     string
	SealedBlob   string
}

// Notifier accepts delivery jobs without blocking the request path.
type Notifier interface {
	Enqueue(n Notification) bool
}
