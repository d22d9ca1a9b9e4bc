package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/internal/domain/repository"
	domainservice "github.com/embedpro/pids-licensing/internal/domain/service"
	"github.com/embedpro/pids-licensing/internal/infrastructure/monitoring"
	"github.com/embedpro/pids-licensing/pkg/constants"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
	"github.com/embedpro/pids-licensing/pkg/logger"
	"github.com/embedpro/pids-licensing/pkg/seal"
	"github.com/embedpro/pids-licensing/pkg/utils"
)

// LicenseAppService orchestrates the license lifecycle.
type LicenseAppService struct {
	repo     repository.LicenseRepository
	guard    domainservice.DuplicateGuard
	notifier domainservice.Notifier
	sealer   *seal.Sealer
	metrics  *monitoring.Metrics
	log      logger.Logger

	now         func() time.Time
	genPassword func() (string, error)
}

// NewLicenseAppService wires the license use cases.
func NewLicenseAppService(
	repo repository.LicenseRepository,
	guard domainservice.DuplicateGuard,
	notifier domainservice.Notifier,
	sealer *seal.Sealer,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *LicenseAppService {
	return &LicenseAppService{
		repo:        repo,
		guard:       guard,
		notifier:    notifier,
		sealer:      sealer,
		metrics:     metrics,
		log:         log.WithComponent("license_service"),
		now:         time.Now,
		genPassword: domainservice.GeneratePassword,
	}
}

// fingerprint joins every create field into the duplicate-window key.
func fingerprint(req *dto.CreateLicenseRequest) string {
	return strings.Join([]string{
		req.CustomerName,
		req.SiteName,
		strconv.Itoa(req.DeviceCount),
		strconv.Itoa(req.Validity),
		req.Email,
		req.Description,
		req.FileURL,
	}, "|")
}

// Create generates a licence: derives the system ID and activation password,
// stores the record, queues credential delivery, and returns both sealed
// payload forms built from the persisted data. The in-process window absorbs
// double submissions; the store's conditional write is authoritative.
func (s *LicenseAppService) Create(ctx context.Context, req *dto.CreateLicenseRequest) (*dto.CreateLicenseResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if existing := s.findSoftDuplicate(ctx, req); existing != nil {
		return nil, apperrors.ErrConflict(
			fmt.Sprintf("A matching licence already exists: %s", existing.SystemID))
	}

	fp := fingerprint(req)
	if !s.guard.Acquire(fp) {
		s.metrics.DuplicateSubmissionsHit.Inc()
		return nil, apperrors.ErrConflict("Duplicate submission. A matching request was just processed.")
	}

	result, err := s.create(ctx, req)
	if err != nil {
		// A failed create must not poison the window for a retry.
		s.guard.Release(fp)
		return nil, err
	}
	return result, nil
}

func (s *LicenseAppService) create(ctx context.Context, req *dto.CreateLicenseRequest) (*dto.CreateLicenseResult, error) {
	count, err := s.repo.CountByCustomer(ctx, req.CustomerName)
	if err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}
	// Sequence numbers are one-based: a customer's first licence is CS1.
	sequence := count + 1

	password, err := s.genPassword()
	if err != nil {
		return nil, apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}

	generated := s.now()
	record := &models.LicenseRecord{
		CustomerName:  req.CustomerName,
		SystemID:      domainservice.FormatSystemID(req.CustomerName, req.SiteName, req.DeviceCount, sequence, generated),
		SiteName:      req.SiteName,
		DeviceCount:   req.DeviceCount,
		GeneratedDate: generated.Format(constants.DateLayout),
		Validity:      req.Validity,
		Email:         req.Email,
		LicenceState:  models.LicenseStateInactive,
		Password:      password,
		Description:   req.Description,
		FileURL:       req.FileURL,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}
	s.metrics.LicensesCreated.Inc()
	s.log.Info(ctx, "licence created",
		logger.String("system_id", record.SystemID),
		logger.String("customer", record.CustomerName),
		logger.Masked("password", password))

	sealed, verbose, err := s.sealPayloads(record)
	if err != nil {
		return nil, apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
	s.queueDelivery(ctx, record, sealed)

	return &dto.CreateLicenseResult{
		Record:           record,
		EncryptedPayload: verbose,
		SealedPayload:    sealed,
	}, nil
}

// findSoftDuplicate scans for an existing licence with the same shape. The
// scan is advisory: a store failure here logs and lets the create proceed,
// because the conditional write still holds.
func (s *LicenseAppService) findSoftDuplicate(ctx context.Context, req *dto.CreateLicenseRequest) *models.LicenseRecord {
	records, err := s.repo.ListByCustomer(ctx, req.CustomerName)
	if err != nil {
		s.log.Warn(ctx, "soft-duplicate scan failed, proceeding", logger.Err(err))
		return nil
	}
	for _, r := range records {
		if r.SiteName == req.SiteName &&
			r.DeviceCount == req.DeviceCount &&
			r.Validity == req.Validity &&
			r.Email == req.Email {
			return r
		}
	}
	return nil
}

// sealPayloads builds both wire forms from the exact persisted record.
func (s *LicenseAppService) sealPayloads(record *models.LicenseRecord) (string, *seal.Envelope, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"customer_name":  record.CustomerName,
		"system_id":      record.SystemID,
		"site_name":      record.SiteName,
		"device_count":   record.DeviceCount,
		"validity":       record.Validity,
		"email":          record.Email,
		"generated_date": record.GeneratedDate,
	})
	if err != nil {
		return "", nil, fmt.Errorf("encode sealed payload: %w", err)
	}
	sealed, err := s.sealer.Seal(string(payload), record.Password)
	if err != nil {
		return "", nil, err
	}
	verbose, err := s.sealer.SealVerbose(string(payload), record.Password)
	if err != nil {
		return "", nil, err
	}
	return sealed, verbose, nil
}

// queueDelivery enqueues the credential mail job. Delivery is best-effort; a
// full queue logs and moves on, never failing the request.
func (s *LicenseAppService) queueDelivery(ctx context.Context, record *models.LicenseRecord, sealed string) {
	accepted := s.notifier.Enqueue(domainservice.Notification{
		Recipient:    record.Email,
		CustomerName: record.CustomerName,
		SystemID:     record.SystemID,
		Password:     record.Password,
		SealedBlob:   sealed,
	})
	if !accepted {
		s.log.Warn(ctx, "notification queue full, credential mail skipped",
			logger.String("system_id", record.SystemID))
	}
}

// Update applies a partial patch to an existing licence and rotates its
// activation password; the new credential is delivered the same way as on
// create. Reads and writes are not transactional; concurrent updates resolve
// last-writer-wins.
func (s *LicenseAppService) Update(ctx context.Context, req *dto.UpdateLicenseRequest) (*models.LicenseRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	record, err := s.repo.Get(ctx, req.CustomerName, req.SystemID)
	if err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}

	if req.DeviceCount != nil {
		record.DeviceCount = *req.DeviceCount
	}
	if req.Validity != nil {
		record.Validity = *req.Validity
	}
	if req.Email != nil {
		record.Email = *req.Email
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.FileURL != nil {
		record.FileURL = *req.FileURL
	}

	password, err := s.genPassword()
	if err != nil {
		return nil, apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
	record.Password = password

	if err := s.repo.Put(ctx, record); err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}
	s.log.Info(ctx, "licence updated, password rotated",
		logger.String("system_id", record.SystemID),
		logger.Masked("password", password))

	sealed, _, err := s.sealPayloads(record)
	if err != nil {
		s.log.Error(ctx, "seal payload failed, credential mail skipped", err,
			logger.String("system_id", record.SystemID))
		return record, nil
	}
	s.queueDelivery(ctx, record, sealed)
	return record, nil
}

// Delete removes a licence.
func (s *LicenseAppService) Delete(ctx context.Context, req *dto.DeleteLicenseRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.CustomerName, req.SystemID); err != nil {
		return mapStoreErr(err, "Licence not found")
	}
	s.metrics.LicensesDeleted.Inc()
	s.log.Info(ctx, "licence deleted",
		logger.String("system_id", req.SystemID),
		logger.String("customer", req.CustomerName))
	return nil
}

// Activate validates the activation credential, binds the machine
// identifiers and flips the licence active. Re-activating an already active
// licence is an idempotent success: the original activation date and
// bindings stand.
func (s *LicenseAppService) Activate(ctx context.Context, req *dto.ActivateLicenseRequest) (map[string]interface{}, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	record, err := s.repo.FindBySystemID(ctx, req.SystemID)
	if err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}
	// The activation credential is a delivered one-time secret, compared as
	// a plain string.
	if record.Password != req.Password {
		return nil, apperrors.ErrUnauthorized("Invalid activation password")
	}

	if !record.IsActive() {
		record.LicenceState = models.LicenseStateActive
		record.ActivatedDate = s.now().Format(constants.DateLayout)
		record.FrontendMAC = req.FrontendMAC
		record.BackendMAC = req.BackendMAC
		if err := s.repo.Put(ctx, record); err != nil {
			return nil, mapStoreErr(err, "Licence not found")
		}
		s.metrics.LicensesActivated.Inc()
		s.log.Info(ctx, "licence activated",
			logger.String("system_id", record.SystemID),
			logger.String("fe_mac", record.FrontendMAC),
			logger.String("be_mac", record.BackendMAC))
	} else {
		s.log.Info(ctx, "licence re-activation, returning existing state",
			logger.String("system_id", record.SystemID))
	}

	projection := record.Projection()
	projection["valid_till"] = record.ValidTill().Format(constants.DateLayout)
	return projection, nil
}

// ListAll returns every licence in the store.
func (s *LicenseAppService) ListAll(ctx context.Context) ([]*models.LicenseRecord, error) {
	records, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}
	return records, nil
}

// Stats computes the dashboard aggregates over a full scan.
func (s *LicenseAppService) Stats(ctx context.Context) (*models.AggregateStats, error) {
	records, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "Licence not found")
	}

	now := s.now()
	recentCutoff := now.AddDate(0, 0, -constants.RecentActivationDays)
	perCustomer := make(map[string]int)

	stats := &models.AggregateStats{}
	for _, r := range records {
		stats.TotalLicenses++
		perCustomer[r.CustomerName]++
		if r.IsActive() {
			stats.ActiveLicenses++
		} else {
			stats.InactiveLicenses++
		}
		if r.IsExpired(now) {
			stats.ExpiredLicenses++
		}
		if r.ActivatedDate != "" {
			if activated, err := time.Parse(constants.DateLayout, r.ActivatedDate); err == nil && !activated.Before(recentCutoff) {
				stats.ActivatedLast30Days++
			}
		}
	}
	stats.TotalCustomers = len(perCustomer)
	stats.TopCustomers = topCustomers(perCustomer, constants.TopCustomerCount)
	return stats, nil
}

func topCustomers(perCustomer map[string]int, limit int) []models.CustomerCount {
	counts := make([]models.CustomerCount, 0, len(perCustomer))
	for name, n := range perCustomer {
		counts = append(counts, models.CustomerCount{CustomerName: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].CustomerName < counts[j].CustomerName
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
