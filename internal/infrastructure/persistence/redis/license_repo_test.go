package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/internal/domain/repository"
)

func newTestRepo(t *testing.T) *LicenseRepo {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLicenseRepo(client)
}

func sampleRecord(customer, systemID string) *models.LicenseRecord {
	return &models.LicenseRecord{
		CustomerName:  customer,
		SystemID:      systemID,
		SiteName:      "North",
		DeviceCount:   5,
		GeneratedDate: "2024-05-01",
		Validity:      12,
		Email:         "ops@example.com",
		LicenceState:  models.LicenseStateInactive,
		Password:      "s3cret-p4ss!",
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.Get(ctx, "Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestCreateDuplicateCompositeKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, repo.Create(ctx, rec))

	err := repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5"))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestCreateDuplicateSystemIDAcrossCustomers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")))

	// Same system ID under a different customer must still be rejected.
	err := repo.Create(ctx, sampleRecord("Globex", "CFS30_ACM_NOCS1_052024_5"))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestFindBySystemID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.FindBySystemID(ctx, "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CustomerName)

	_, err = repo.FindBySystemID(ctx, "CFS30_UNKNOWN")
	assert.ErrorIs(t, err, repository.ErrRecordMissing)
}

func TestPutRequiresExistingRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")
	err := repo.Put(ctx, rec)
	assert.ErrorIs(t, err, repository.ErrRecordMissing)

	require.NoError(t, repo.Create(ctx, rec))
	rec.LicenceState = models.LicenseStateActive
	rec.ActivatedDate = "2024-06-01"
	require.NoError(t, repo.Put(ctx, rec))

	got, err := repo.Get(ctx, "Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStateActive, got.LicenceState)
	assert.Equal(t, "2024-06-01", got.ActivatedDate)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")
	require.NoError(t, repo.Create(ctx, rec))
	require.NoError(t, repo.Delete(ctx, "Acme", "CFS30_ACM_NOCS1_052024_5"))

	_, err := repo.Get(ctx, "Acme", "CFS30_ACM_NOCS1_052024_5")
	assert.ErrorIs(t, err, repository.ErrRecordMissing)

	_, err = repo.FindBySystemID(ctx, "CFS30_ACM_NOCS1_052024_5")
	assert.ErrorIs(t, err, repository.ErrRecordMissing)

	// System ID is reusable after deletion.
	require.NoError(t, repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")))

	err = repo.Delete(ctx, "Acme", "CFS30_MISSING")
	assert.ErrorIs(t, err, repository.ErrRecordMissing)
}

func TestListAndCountByCustomer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")))
	require.NoError(t, repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS2_052024_5")))
	require.NoError(t, repo.Create(ctx, sampleRecord("Globex", "CFS30_GLO_SICS0_052024_5")))

	records, err := repo.ListByCustomer(ctx, "Acme")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	n, err := repo.CountByCustomer(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountByCustomer(ctx, "Nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	records, err := repo.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, repo.Create(ctx, sampleRecord("Acme", "CFS30_ACM_NOCS1_052024_5")))
	require.NoError(t, repo.Create(ctx, sampleRecord("Globex", "CFS30_GLO_SICS0_052024_5")))

	records, err = repo.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
