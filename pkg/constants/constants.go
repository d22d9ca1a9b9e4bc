// Package constants defines shared constants for the PIDS licensing service.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is used for logging, metrics and tracing attribution.
	ServiceName = "pids-licensing"

	// APIBasePath is the base path for all public HTTP endpoints.
	APIBasePath = "/api"
)

// ================================================================================
// License Domain
// ================================================================================

const (
	// SystemIDPrefix is the fixed product prefix of every generated system ID.
	SystemIDPrefix = "CFS30"

	// LicensePasswordLength is the length of generated activation credentials.
	LicensePasswordLength = 12

	// DateLayout is the calendar-date wire format (generated/activated dates).
	DateLayout = "2006-01-02"

	// DuplicateWindow is the idempotency window for license create submissions.
	// Identical fingerprints inside this window are rejected with a conflict.
	DuplicateWindow = 10 * time.Second

	// RecentActivationDays bounds the "activated recently" aggregate statistic.
	RecentActivationDays = 30

	// TopCustomerCount bounds the per-customer leaderboard in aggregate stats.
	TopCustomerCount = 5
)

// ================================================================================
// Authentication
// ================================================================================

const (
	// AccessTokenTTL is the validity window of issued access tokens.
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the validity window of issued refresh tokens.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// CredentialCacheTTL is how long the vault credential blob is served from
	// the in-process cache before being re-read.
	CredentialCacheTTL = 60 * time.Second

	// BcryptCost is the hashing cost for stored user passwords.
	BcryptCost = 10

	// DefaultAdminUsername is the bootstrap user created when the credential
	// secret does not exist yet.
	DefaultAdminUsername = "admin"
)

// ================================================================================
// Storage Keys
// ================================================================================

const (
	// LicenseKeyPrefix prefixes the primary record key: {prefix}{customer}:{system_id}.
	LicenseKeyPrefix = "pids:license:"

	// SystemIDIndexPrefix prefixes the secondary index from system ID to record key.
	SystemIDIndexPrefix = "pids:sysid:"

	// CustomerSetPrefix prefixes the per-customer set of record keys.
	CustomerSetPrefix = "pids:customer:"

	// LicenseSetKey is the set of all record keys, used for aggregate scans.
	LicenseSetKey = "pids:licenses"

	// BlacklistKeyPrefix prefixes revoked-token entries.
	BlacklistKeyPrefix = "pids:bl:"

	// CredentialSecretPath is the vault KV path of the user credential blob.
	CredentialSecretPath = "pids/user-credentials"
)

// ================================================================================
// Notification
// ================================================================================

const (
	// NotifyQueueSize bounds the asynchronous notification queue.
	NotifyQueueSize = 64

	// NotifyMaxAttempts is how many delivery attempts are made before a job
	// is dead-lettered.
	NotifyMaxAttempts = 3

	// NotifyRetryBackoff is the base delay between delivery attempts.
	NotifyRetryBackoff = 5 * time.Second
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the dedicated type for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation ID.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyUsername carries the authenticated username.
	ContextKeyUsername ContextKey = "username"
)
