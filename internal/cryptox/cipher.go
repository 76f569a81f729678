package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/skarpenko/govault/internal/common"
)

// Seal encrypts plaintext with AES-256-GCM under key and returns a
// self-contained token: a random 12-byte nonce followed by the ciphertext
// and the GCM authentication tag. The token can only be opened with the
// exact key used here.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a token produced by Seal. It returns
// common.ErrorInvalidToken when the key is wrong or the token has been
// tampered with or truncated, so callers can distinguish a bad secret
// password from a missing record.
func Open(token, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	if len(token) < aesgcm.NonceSize() {
		return nil, common.ErrorInvalidToken
	}
	nonce, ciphertext := token[:aesgcm.NonceSize()], token[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrorInvalidToken
	}
	return plaintext, nil
}
