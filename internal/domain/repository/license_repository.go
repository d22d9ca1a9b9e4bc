// Package repository defines the persistence ports of the domain layer.
package repository

import (
	"context"
	"errors"

	"github.com/embedpro/pids-licensing/internal/domain/models"
)

// Typed store failures. Implementations translate backend errors into these
// sentinels; the application layer maps them onto the error taxonomy in one
// place instead of inspecting backend errors per call site.
var (
	// ErrDuplicateKey reports a conditional write that found the key taken.
	ErrDuplicateKey = errors.New("repository: key already exists")

	// ErrRecordMissing reports a lookup or guarded write on an absent record.
	ErrRecordMissing = errors.New("repository: record not found")

	// ErrStoreThrottled reports upstream rate limiting.
	ErrStoreThrottled = errors.New("repository: store throttled")

	// ErrStoreUnavailable reports upstream connectivity loss.
	ErrStoreUnavailable = errors.New("repository: store unavailable")
)

// LicenseRepository is the license persistence port.
type LicenseRepository interface {
	// Create stores a new record. Fails with ErrDuplicateKey when the
	// (customer, system ID) pair or the system ID alone is already taken.
	Create(ctx context.Context, record *models.LicenseRecord) error

	// Get fetches one record by its composite identity.
	Get(ctx context.Context, customerName, systemID string) (*models.LicenseRecord, error)

	// FindBySystemID resolves a record through the system-ID index.
	FindBySystemID(ctx context.Context, systemID string) (*models.LicenseRecord, error)

	// Put overwrites an existing record. Fails with ErrRecordMissing when
	// the record is absent.
	Put(ctx context.Context, record *models.LicenseRecord) error

	// Delete removes an existing record and its index entries. Fails with
	// ErrRecordMissing when the record is absent.
	Delete(ctx context.Context, customerName, systemID string) error

	// ListByCustomer returns every record of one customer.
	ListByCustomer(ctx context.Context, customerName string) ([]*models.LicenseRecord, error)

	// CountByCustomer returns how many records a customer has. Used for
	// system-ID sequence numbering.
	CountByCustomer(ctx context.Context, customerName string) (int, error)

	// Scan returns every record in the store. Aggregate statistics and the
	// soft-duplicate check are computed over this.
	Scan(ctx context.Context) ([]*models.LicenseRecord, error)
}
