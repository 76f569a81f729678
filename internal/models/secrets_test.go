package models

import (
	"errors"
	"testing"

	"github.com/skarpenko/govault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSecrets_RoundTrip(t *testing.T) {
	secrets := []string{"tok1", "tok2", "with,comma", `with"quote`}

	data, err := EncodeSecrets(secrets)
	require.NoError(t, err)

	got, err := DecodeSecrets(data)
	require.NoError(t, err)
	assert.Equal(t, secrets, got)
}

func TestEncodeSecrets_Empty(t *testing.T) {
	data, err := EncodeSecrets(nil)
	require.NoError(t, err)

	got, err := DecodeSecrets(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncodeSecrets_TooMany(t *testing.T) {
	_, err := EncodeSecrets([]string{"1", "2", "3", "4", "5"})
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestDecodeSecrets_Garbage(t *testing.T) {
	_, err := DecodeSecrets([]byte("not json"))
	assert.Error(t, err)
}
