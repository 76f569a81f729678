// Package cryptox implements the two cryptographic primitives the vault is
// built on: memory-hard key derivation (scrypt) and authenticated symmetric
// encryption (AES-256-GCM).
//
// Every key in the system is derived, never stored: the login key is
// derived from the login password and the per-account login salt, and each
// record key is derived from a secret password and the per-account access
// salt. The cipher itself is stateless.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/skarpenko/govault/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	// SaltSize is the length of generated salts in bytes.
	SaltSize = 16
	// KeySize is the length of derived keys in bytes (AES-256).
	KeySize = 32
)

// Params holds scrypt cost parameters. Two named profiles exist in the
// configuration: an interactive one used for every login and record-key
// derivation, and a high-memory one reserved for file-level encryption.
type Params struct {
	N int
	R int
	P int
}

// InteractiveParams returns the default cost profile for login and
// record-key derivation (RAM ~2 MB).
func InteractiveParams() Params {
	return Params{N: 16384, R: 8, P: 1}
}

// FileParams returns the default high-memory cost profile (RAM ~1 GB),
// reserved for file-level encryption.
func FileParams() Params {
	return Params{N: 1 << 20, R: 8, P: 1}
}

// DeriveKey derives a KeySize-byte key from password and salt using scrypt
// with the given cost parameters. Identical inputs always produce an
// identical key. Empty password or salt is a programming error.
func DeriveKey(password, salt []byte, p Params) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password must not be empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt must not be empty")
	}
	key, err := scrypt.Key(password, salt, p.N, p.R, p.P, KeySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	return key, nil
}

// GenerateSalt returns a fresh cryptographically random salt.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// GeneratePasswordKey derives a key from password with a freshly generated
// salt and returns both. Used at registration, when no salt exists yet.
func GeneratePasswordKey(password []byte, p Params) (key, salt []byte, err error) {
	salt = GenerateSalt()
	key, err = DeriveKey(password, salt, p)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}
