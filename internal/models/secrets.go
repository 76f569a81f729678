package models

import (
	"encoding/json"
	"fmt"

	"github.com/skarpenko/govault/internal/common"
)

// MaxSecrets is the maximum number of secret values one record can hold.
const MaxSecrets = 4

// EncodeSecrets serializes a sequence of secret values to bytes before
// encryption. JSON is used instead of a delimiter join so secret values may
// contain any character without corrupting the round trip.
func EncodeSecrets(secrets []string) ([]byte, error) {
	if len(secrets) > MaxSecrets {
		return nil, fmt.Errorf("%w: at most %d secrets allowed, got %d",
			common.ErrorValidation, MaxSecrets, len(secrets))
	}
	return json.Marshal(secrets)
}

// DecodeSecrets reverses EncodeSecrets on a decrypted payload.
func DecodeSecrets(data []byte) ([]string, error) {
	var secrets []string
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("decode secrets: %w", err)
	}
	return secrets, nil
}
