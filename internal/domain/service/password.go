package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/embedpro/pids-licensing/pkg/constants"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*()_+[]{}|;:,.<>?"

// GeneratePassword draws an activation credential of the standard length
// from the full alphabet using the system CSPRNG. Each position is drawn
// independently and uniformly.
func GeneratePassword() (string, error) {
	return generatePassword(constants.LicensePasswordLength)
}

func generatePassword(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
