package seal

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedpro/pids-licensing/sdk/go/licenseseal"
)

func TestSealCompactRoundTrip(t *testing.T) {
	s := New()

	sealed, err := s.Seal(`{"system_id":"CFS30_ACM_NOCS3_052024_5"}`, "correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, CompactPrefix))

	plaintext, err := licenseseal.Unseal(sealed, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, `{"system_id":"CFS30_ACM_NOCS3_052024_5"}`, plaintext)
}

func TestSealCompactLayout(t *testing.T) {
	s := New()

	sealed, err := s.Seal("payload", "pass")
	require.NoError(t, err)

	packed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, CompactPrefix))
	require.NoError(t, err)
	// salt || nonce || tag || ciphertext
	assert.Equal(t, SaltLen+NonceLen+TagLen+len("payload"), len(packed))
}

func TestSealFreshRandomnessPerCall(t *testing.T) {
	s := New()

	first, err := s.Seal("same payload", "same pass")
	require.NoError(t, err)
	second, err := s.Seal("same payload", "same pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSealWrongPassphraseFails(t *testing.T) {
	s := New()

	sealed, err := s.Seal("secret", "right")
	require.NoError(t, err)

	_, err = licenseseal.Unseal(sealed, "wrong")
	assert.ErrorIs(t, err, licenseseal.ErrIntegrity)
}

func TestSealTamperedCiphertextFails(t *testing.T) {
	s := New()

	sealed, err := s.Seal("secret", "pass")
	require.NoError(t, err)

	packed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, CompactPrefix))
	require.NoError(t, err)
	packed[len(packed)-1] ^= 0x01
	tampered := CompactPrefix + base64.StdEncoding.EncodeToString(packed)

	_, err = licenseseal.Unseal(tampered, "pass")
	assert.ErrorIs(t, err, licenseseal.ErrIntegrity)
}

func TestSealVerboseRoundTrip(t *testing.T) {
	s := New()

	env, err := s.SealVerbose("credential blob", "passphrase")
	require.NoError(t, err)

	assert.Equal(t, Algorithm, env.Algorithm)
	assert.Equal(t, KDF, env.KDF)
	assert.Equal(t, Digest, env.Digest)
	assert.Equal(t, Iterations, env.Iterations)

	iv, err := base64.StdEncoding.DecodeString(env.IV)
	require.NoError(t, err)
	assert.Len(t, iv, NonceLen)
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	require.NoError(t, err)
	assert.Len(t, salt, SaltLen)
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	require.NoError(t, err)
	assert.Len(t, tag, TagLen)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	plaintext, err := licenseseal.UnsealVerbose(raw, "passphrase")
	require.NoError(t, err)
	assert.Equal(t, "credential blob", plaintext)
}

func TestUnsealMalformedInput(t *testing.T) {
	_, err := licenseseal.Unseal("no-prefix", "pass")
	assert.ErrorIs(t, err, licenseseal.ErrMalformed)

	_, err = licenseseal.Unseal("v1:%%%", "pass")
	assert.ErrorIs(t, err, licenseseal.ErrMalformed)

	_, err = licenseseal.Unseal("v1:"+base64.StdEncoding.EncodeToString([]byte("short")), "pass")
	assert.ErrorIs(t, err, licenseseal.ErrMalformed)
}
