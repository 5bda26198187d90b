package secure_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhanhRomVN/termi-tool/internal/secure"
)

func TestAPIKeyRevealRoundTrip(t *testing.T) {
	key := secure.NewAPIKey("AIzaSyD-test-key-123")

	var seen string
	err := key.Reveal(func(k string) error {
		seen = k
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyD-test-key-123", seen)

	// A second reveal works; the enclave survives being opened.
	err = key.Reveal(func(k string) error {
		assert.Equal(t, "AIzaSyD-test-key-123", k)
		return nil
	})
	require.NoError(t, err)
}

func TestAPIKeyRevealPropagatesError(t *testing.T) {
	key := secure.NewAPIKey("secret")
	sentinel := errors.New("request failed")

	err := key.Reveal(func(string) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestAPIKeyDestroy(t *testing.T) {
	key := secure.NewAPIKey("secret")
	key.Destroy()
	key.Destroy() // idempotent

	err := key.Reveal(func(k string) error {
		assert.Empty(t, k)
		return nil
	})
	assert.NoError(t, err)
}
