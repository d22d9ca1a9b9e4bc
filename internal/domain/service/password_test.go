package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedpro/pids-licensing/pkg/constants"
)

func TestGeneratePasswordLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, pw, constants.LicensePasswordLength)
		for _, c := range pw {
			assert.True(t, strings.ContainsRune(passwordAlphabet, c),
				"character %q outside alphabet", c)
		}
	}
}

func TestGeneratePasswordNotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1, "expected distinct passwords across draws")
}
