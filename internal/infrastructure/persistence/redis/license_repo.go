package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/internal/domain/repository"
	"github.com/embedpro/pids-licensing/pkg/constants"
)

// Conditional-write scripts. KEYS[1] is always the record key; the create
// script also guards the system-ID index so an ID can never point at two
// records.
var (
	createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], KEYS[1])
redis.call('SADD', KEYS[3], KEYS[1])
redis.call('SADD', KEYS[4], KEYS[1])
return 1`)

	putScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1`)

	deleteScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('DEL', KEYS[2])
redis.call('SREM', KEYS[3], KEYS[1])
redis.call('SREM', KEYS[4], KEYS[1])
return 1`)
)

// LicenseRepo implements repository.LicenseRepository on Redis.
type LicenseRepo struct {
	client *goredis.Client
}

// NewLicenseRepo creates the Redis-backed license repository.
func NewLicenseRepo(client *goredis.Client) *LicenseRepo {
	return &LicenseRepo{client: client}
}

func recordKey(customerName, systemID string) string {
	return constants.LicenseKeyPrefix + customerName + ":" + systemID
}

func systemIDKey(systemID string) string {
	return constants.SystemIDIndexPrefix + systemID
}

func customerSetKey(customerName string) string {
	return constants.CustomerSetPrefix + customerName
}

// Create stores a new record behind a uniqueness guard on both the composite
// key and the system-ID index.
func (r *LicenseRepo) Create(ctx context.Context, record *models.LicenseRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal license record: %w", err)
	}
	keys := []string{
		recordKey(record.CustomerName, record.SystemID),
		systemIDKey(record.SystemID),
		customerSetKey(record.CustomerName),
		constants.LicenseSetKey,
	}
	created, err := createScript.Run(ctx, r.client, keys, string(payload)).Int()
	if err != nil {
		return translateErr(err)
	}
	if created == 0 {
		return repository.ErrDuplicateKey
	}
	return nil
}

// Get fetches one record by its composite identity.
func (r *LicenseRepo) Get(ctx context.Context, customerName, systemID string) (*models.LicenseRecord, error) {
	raw, err := r.client.Get(ctx, recordKey(customerName, systemID)).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	return decodeRecord(raw)
}

// FindBySystemID resolves a record through the system-ID index.
func (r *LicenseRepo) FindBySystemID(ctx context.Context, systemID string) (*models.LicenseRecord, error) {
	key, err := r.client.Get(ctx, systemIDKey(systemID)).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	return decodeRecord(raw)
}

// Put overwrites an existing record; the guard keeps a concurrent delete from
// being resurrected by a late update.
func (r *LicenseRepo) Put(ctx context.Context, record *models.LicenseRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal license record: %w", err)
	}
	keys := []string{recordKey(record.CustomerName, record.SystemID)}
	updated, err := putScript.Run(ctx, r.client, keys, string(payload)).Int()
	if err != nil {
		return translateErr(err)
	}
	if updated == 0 {
		return repository.ErrRecordMissing
	}
	return nil
}

// Delete removes a record together with its index entries.
func (r *LicenseRepo) Delete(ctx context.Context, customerName, systemID string) error {
	keys := []string{
		recordKey(customerName, systemID),
		systemIDKey(systemID),
		customerSetKey(customerName),
		constants.LicenseSetKey,
	}
	removed, err := deleteScript.Run(ctx, r.client, keys).Int()
	if err != nil {
		return translateErr(err)
	}
	if removed == 0 {
		return repository.ErrRecordMissing
	}
	return nil
}

// ListByCustomer returns every record of one customer.
func (r *LicenseRepo) ListByCustomer(ctx context.Context, customerName string) ([]*models.LicenseRecord, error) {
	keys, err := r.client.SMembers(ctx, customerSetKey(customerName)).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	return r.fetchAll(ctx, keys)
}

// CountByCustomer returns how many records a customer has.
func (r *LicenseRepo) CountByCustomer(ctx context.Context, customerName string) (int, error) {
	n, err := r.client.SCard(ctx, customerSetKey(customerName)).Result()
	if err != nil {
		return 0, translateErr(err)
	}
	return int(n), nil
}

// Scan returns every record in the store.
func (r *LicenseRepo) Scan(ctx context.Context) ([]*models.LicenseRecord, error) {
	keys, err := r.client.SMembers(ctx, constants.LicenseSetKey).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	return r.fetchAll(ctx, keys)
}

// fetchAll bulk-reads record keys, skipping entries deleted between the set
// read and the fetch.
func (r *LicenseRepo) fetchAll(ctx context.Context, keys []string) ([]*models.LicenseRecord, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, translateErr(err)
	}
	records := make([]*models.LicenseRecord, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(raw string) (*models.LicenseRecord, error) {
	var record models.LicenseRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode license record: %w", err)
	}
	return &record, nil
}
