package licenseseal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedpro/pids-licensing/pkg/seal"
)

const passphrase = "correct horse battery staple"

func TestUnsealCompact(t *testing.T) {
	sealed, err := seal.New().Seal("plaintext credentials", passphrase)
	require.NoError(t, err)

	plain, err := Unseal(sealed, passphrase)
	require.NoError(t, err)
	assert.Equal(t, "plaintext credentials", plain)

	_, err = Unseal(sealed, "wrong passphrase")
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestUnsealMalformed(t *testing.T) {
	cases := map[string]string{
		"no prefix":  "bm90IHNlYWxlZA==",
		"bad base64": "v1:!!!not-base64!!!",
		"truncated":  "v1:AAAA",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unseal(input, passphrase)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestUnsealVerbose(t *testing.T) {
	env, err := seal.New().SealVerbose("verbose credentials", passphrase)
	require.NoError(t, err)
	envelopeJSON, err := json.Marshal(env)
	require.NoError(t, err)

	plain, err := UnsealVerbose(envelopeJSON, passphrase)
	require.NoError(t, err)
	assert.Equal(t, "verbose credentials", plain)
}

func TestUnsealVerboseDefaultsIterations(t *testing.T) {
	env, err := seal.New().SealVerbose("verbose credentials", passphrase)
	require.NoError(t, err)
	envelopeJSON, err := json.Marshal(env)
	require.NoError(t, err)

	// Senders may omit the iteration count; the documented default applies.
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(envelopeJSON, &fields))
	delete(fields, "iterations")
	stripped, err := json.Marshal(fields)
	require.NoError(t, err)

	plain, err := UnsealVerbose(stripped, passphrase)
	require.NoError(t, err)
	assert.Equal(t, "verbose credentials", plain)
}

func TestUnsealVerboseRejectsForeignScheme(t *testing.T) {
	env, err := seal.New().SealVerbose("verbose credentials", passphrase)
	require.NoError(t, err)

	var fields map[string]interface{}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &fields))

	for field, value := range map[string]string{
		"algorithm": "aes-128-cbc",
		"kdf":       "scrypt",
		"digest":    "md5",
	} {
		t.Run(field, func(t *testing.T) {
			mutated := make(map[string]interface{}, len(fields))
			for k, v := range fields {
				mutated[k] = v
			}
			mutated[field] = value
			mutatedJSON, err := json.Marshal(mutated)
			require.NoError(t, err)

			_, err = UnsealVerbose(mutatedJSON, passphrase)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestUnsealVerboseBadJSON(t *testing.T) {
	_, err := UnsealVerbose([]byte("{not json"), passphrase)
	assert.ErrorIs(t, err, ErrMalformed)
}
