// Package secure keeps API keys encrypted in memory between requests.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// APIKey holds a Gemini API key in a memguard enclave. The key sits
// encrypted and mlocked between uses; Reveal decrypts it only for the
// duration of a single request.
type APIKey struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewAPIKey seals the given key material. The input string is copied into
// protected memory; callers should drop their reference afterwards.
func NewAPIKey(key string) *APIKey {
	return &APIKey{enclave: memguard.NewEnclave([]byte(key))}
}

// Reveal decrypts the key and passes it to fn. The plaintext buffer is
// wiped when fn returns; the string must not be retained past the call.
func (k *APIKey) Reveal(fn func(key string) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.destroyed || k.enclave == nil {
		return fn("")
	}

	buf, err := k.enclave.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()

	return fn(buf.String())
}

// Destroy marks the key as unusable. Idempotent; after Destroy, Reveal
// passes an empty string. The encrypted enclave data is left for the
// collector since it is unreadable without the enclave key.
func (k *APIKey) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.destroyed {
		return
	}
	k.enclave = nil
	k.destroyed = true
}
