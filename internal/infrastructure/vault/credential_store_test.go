package vault

import (
	"context"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

// fakeKV is an in-memory KV v2 stand-in.
type fakeKV struct {
	data    map[string]map[string]interface{}
	gets    int
	puts    int
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]map[string]interface{})}
}

func (f *fakeKV) Get(_ context.Context, secretPath string) (*api.KVSecret, error) {
	f.gets++
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.data[secretPath]
	if !ok {
		return nil, api.ErrSecretNotFound
	}
	return &api.KVSecret{Data: data}, nil
}

func (f *fakeKV) Put(_ context.Context, secretPath string, data map[string]interface{}, _ ...api.KVOption) (*api.KVSecret, error) {
	f.puts++
	f.data[secretPath] = data
	return &api.KVSecret{Data: data}, nil
}

func newTestStore(kv *fakeKV) *CredentialStore {
	admin := config.AdminConfig{Password: "bootstrap-pass", Email: "admin@example.com"}
	return newWithKV(kv, admin, logger.NewNop())
}

func TestLoadBootstrapsDefaultAdmin(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(kv)

	set, err := store.Load(context.Background())
	require.NoError(t, err)

	cred, ok := set[constants.DefaultAdminUsername]
	require.True(t, ok, "expected bootstrap admin entry")
	assert.Equal(t, "admin", cred.Role)
	assert.Equal(t, "admin@example.com", cred.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte("bootstrap-pass")))
	assert.Equal(t, 1, kv.puts, "bootstrap must persist the secret")
}

func TestLoadRoundTripAndCache(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(kv)
	ctx := context.Background()

	set := models.CredentialSet{
		"alice": {Password: "$2a$10$hash", Role: "operator", Email: "alice@example.com"},
	}
	require.NoError(t, store.Save(ctx, set))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, set, got)

	// Served from cache: no further backend reads.
	_, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, kv.gets)
}

func TestSaveRefreshesCache(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(kv)
	ctx := context.Background()

	first := models.CredentialSet{"alice": {Password: "h1", Role: "operator", Email: "a@example.com"}}
	require.NoError(t, store.Save(ctx, first))

	second := models.CredentialSet{"alice": {Password: "h2", Role: "operator", Email: "a@example.com"}}
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "h2", got["alice"].Password)
}
