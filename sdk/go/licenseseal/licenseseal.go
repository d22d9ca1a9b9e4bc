// Package licenseseal is the client-side counterpart of the server's payload
// sealing. Integrators embed it to open credential payloads delivered with a
// license, in either the compact "v1:" form or the verbose JSON envelope.
package licenseseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	compactPrefix = "v1:"

	saltLen  = 16
	nonceLen = 12
	tagLen   = 16
	keyLen   = 32

	defaultIterations = 150000
)

// ErrIntegrity is returned when authentication of a sealed payload fails:
// wrong passphrase or tampered data. The two cases are indistinguishable.
var ErrIntegrity = errors.New("licenseseal: payload integrity check failed")

// ErrMalformed is returned when the sealed payload cannot be parsed at all.
var ErrMalformed = errors.New("licenseseal: malformed sealed payload")

// Unseal opens a compact sealed payload ("v1:" + base64(salt||nonce||tag||ct))
// with the given passphrase.
func Unseal(sealed, passphrase string) (string, error) {
	if !strings.HasPrefix(sealed, compactPrefix) {
		return "", fmt.Errorf("%w: missing %q prefix", ErrMalformed, compactPrefix)
	}
	packed, err := base64.StdEncoding.DecodeString(sealed[len(compactPrefix):])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(packed) < saltLen+nonceLen+tagLen {
		return "", fmt.Errorf("%w: truncated", ErrMalformed)
	}
	salt := packed[:saltLen]
	nonce := packed[saltLen : saltLen+nonceLen]
	tag := packed[saltLen+nonceLen : saltLen+nonceLen+tagLen]
	ct := packed[saltLen+nonceLen+tagLen:]
	return open(passphrase, salt, nonce, tag, ct, defaultIterations)
}

// envelope mirrors the server's verbose wire form.
type envelope struct {
	Algorithm  string `json:"algorithm"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Digest     string `json:"digest"`
	IV         string `json:"iv"`
	Salt       string `json:"salt"`
	Tag        string `json:"tag"`
	Ciphertext string `json:"ciphertext"`
}

// UnsealVerbose opens a verbose JSON envelope with the given passphrase.
func UnsealVerbose(envelopeJSON []byte, passphrase string) (string, error) {
	var env envelope
	if err := json.Unmarshal(envelopeJSON, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Algorithm != "aes-256-gcm" || env.KDF != "pbkdf2" || env.Digest != "sha256" {
		return "", fmt.Errorf("%w: unsupported scheme %s/%s/%s", ErrMalformed, env.Algorithm, env.KDF, env.Digest)
	}
	iterations := env.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", ErrMalformed, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", ErrMalformed, err)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil {
		return "", fmt.Errorf("%w: tag: %v", ErrMalformed, err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrMalformed, err)
	}
	if len(nonce) != nonceLen || len(tag) != tagLen {
		return "", fmt.Errorf("%w: bad iv or tag length", ErrMalformed)
	}
	return open(passphrase, salt, nonce, tag, ct, iterations)
}

func open(passphrase string, salt, nonce, tag, ct []byte, iterations int) (string, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	// gcm.Open expects the tag appended to the ciphertext.
	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}
