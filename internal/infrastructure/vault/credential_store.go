// Package vault implements the user credential store on Vault KV v2. The
// whole credential set lives in one secret; reads are served from a short
// in-process cache to keep the hot auth path off Vault.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

const cacheKey = "credential-set"

// kvStore is the slice of the Vault KV v2 API the store needs. *api.KVv2
// satisfies it; tests substitute a fake.
type kvStore interface {
	Get(ctx context.Context, secretPath string) (*api.KVSecret, error)
	Put(ctx context.Context, secretPath string, data map[string]interface{}, opts ...api.KVOption) (*api.KVSecret, error)
}

// CredentialStore reads and writes the credential blob.
type CredentialStore struct {
	kv    kvStore
	cache *gocache.Cache
	log   logger.Logger

	bootstrapPassword string
	bootstrapEmail    string
}

// New connects to Vault and returns the credential store.
func New(cfg config.VaultConfig, admin config.AdminConfig, log logger.Logger) (*CredentialStore, error) {
	vaultCfg := api.DefaultConfig()
	vaultCfg.Address = cfg.Address
	client, err := api.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}
	client.SetToken(cfg.Token)

	return newWithKV(client.KVv2(cfg.Mount), admin, log), nil
}

func newWithKV(kv kvStore, admin config.AdminConfig, log logger.Logger) *CredentialStore {
	return &CredentialStore{
		kv:                kv,
		cache:             gocache.New(constants.CredentialCacheTTL, 2*constants.CredentialCacheTTL),
		log:               log.WithComponent("credential_store"),
		bootstrapPassword: admin.Password,
		bootstrapEmail:    admin.Email,
	}
}

// Load returns the credential set, from cache when fresh. A missing secret
// triggers a one-time bootstrap of the default administrator account.
func (s *CredentialStore) Load(ctx context.Context) (models.CredentialSet, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(models.CredentialSet), nil
	}

	secret, err := s.kv.Get(ctx, constants.CredentialSecretPath)
	if err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return s.bootstrap(ctx)
		}
		return nil, fmt.Errorf("vault: read credentials: %w", err)
	}

	set, err := decodeSet(secret.Data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, set, gocache.DefaultExpiration)
	return set, nil
}

// Save replaces the stored credential set and refreshes the cache.
func (s *CredentialStore) Save(ctx context.Context, set models.CredentialSet) error {
	data := make(map[string]interface{}, len(set))
	for username, cred := range set {
		raw, err := json.Marshal(cred)
		if err != nil {
			return fmt.Errorf("vault: encode credential %s: %w", username, err)
		}
		data[username] = string(raw)
	}
	if _, err := s.kv.Put(ctx, constants.CredentialSecretPath, data); err != nil {
		return fmt.Errorf("vault: write credentials: %w", err)
	}
	s.cache.Set(cacheKey, set, gocache.DefaultExpiration)
	return nil
}

// bootstrap writes the default admin account when no secret exists yet.
func (s *CredentialStore) bootstrap(ctx context.Context) (models.CredentialSet, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.bootstrapPassword), constants.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("vault: hash bootstrap password: %w", err)
	}
	set := models.CredentialSet{
		constants.DefaultAdminUsername: {
			Password:  string(hash),
			Role:      "admin",
			Email:     s.bootstrapEmail,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.Save(ctx, set); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "bootstrapped default administrator account",
		logger.String("username", constants.DefaultAdminUsername))
	return set, nil
}

func decodeSet(data map[string]interface{}) (models.CredentialSet, error) {
	set := make(models.CredentialSet, len(data))
	for username, raw := range data {
		encoded, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("vault: credential %s is not a string", username)
		}
		var cred models.UserCredential
		if err := json.Unmarshal([]byte(encoded), &cred); err != nil {
			return nil, fmt.Errorf("vault: decode credential %s: %w", username, err)
		}
		set[username] = cred
	}
	return set, nil
}
