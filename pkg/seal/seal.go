// Package seal encrypts small payloads (activation credentials) under a
// passphrase so they can travel through mail and files without exposing the
// plaintext. The counterpart decryption routine ships in sdk/go/licenseseal
// for client-side use; both ends agree on the wire forms defined here.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Algorithm identifies the AEAD used in verbose envelopes.
	Algorithm = "aes-256-gcm"

	// KDF identifies the key-derivation function used in verbose envelopes.
	KDF = "pbkdf2"

	// Digest identifies the PBKDF2 digest used in verbose envelopes.
	Digest = "sha256"

	// Iterations is the PBKDF2 iteration count.
	Iterations = 150000

	// KeyLen is the derived AES key length in bytes.
	KeyLen = 32

	// SaltLen is the per-call KDF salt length in bytes.
	SaltLen = 16

	// NonceLen is the GCM nonce length in bytes.
	NonceLen = 12

	// TagLen is the GCM authentication tag length in bytes.
	TagLen = 16

	// CompactPrefix versions the compact wire form.
	CompactPrefix = "v1:"
)

// Envelope is the verbose wire form. Every binary field is standard base64.
type Envelope struct {
	Algorithm  string `json:"algorithm"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Digest     string `json:"digest"`
	IV         string `json:"iv"`
	Salt       string `json:"salt"`
	Tag        string `json:"tag"`
	Ciphertext string `json:"ciphertext"`
}

// Sealer derives a fresh key per call and produces either wire form.
type Sealer struct {
	rand io.Reader
}

// New returns a Sealer backed by crypto/rand.
func New() *Sealer {
	return &Sealer{rand: rand.Reader}
}

// Seal encrypts plaintext under passphrase and returns the compact form:
// "v1:" + base64(salt || nonce || tag || ciphertext). Salt and nonce are
// freshly drawn on every call, so sealing the same input twice never yields
// the same output.
func (s *Sealer) Seal(plaintext, passphrase string) (string, error) {
	salt, nonce, tag, ct, err := s.encrypt(plaintext, passphrase)
	if err != nil {
		return "", err
	}
	packed := make([]byte, 0, SaltLen+NonceLen+TagLen+len(ct))
	packed = append(packed, salt...)
	packed = append(packed, nonce...)
	packed = append(packed, tag...)
	packed = append(packed, ct...)
	return CompactPrefix + base64.StdEncoding.EncodeToString(packed), nil
}

// SealVerbose encrypts plaintext under passphrase and returns the
// self-describing envelope form.
func (s *Sealer) SealVerbose(plaintext, passphrase string) (*Envelope, error) {
	salt, nonce, tag, ct, err := s.encrypt(plaintext, passphrase)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Algorithm:  Algorithm,
		KDF:        KDF,
		Iterations: Iterations,
		Digest:     Digest,
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Tag:        base64.StdEncoding.EncodeToString(tag),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// encrypt performs the KDF + AEAD and splits the GCM output into ciphertext
// and tag (gcm.Seal appends the tag to the ciphertext).
func (s *Sealer) encrypt(plaintext, passphrase string) (salt, nonce, tag, ct []byte, err error) {
	salt = make([]byte, SaltLen)
	if _, err = io.ReadFull(s.rand, salt); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("seal: draw salt: %w", err)
	}
	nonce = make([]byte, NonceLen)
	if _, err = io.ReadFull(s.rand, nonce); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("seal: draw nonce: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, Iterations, KeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("seal: init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("seal: init gcm: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct = sealed[:len(sealed)-TagLen]
	tag = sealed[len(sealed)-TagLen:]
	return salt, nonce, tag, ct, nil
}
