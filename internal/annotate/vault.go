package annotate

import (
	"fmt"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
	"github.com/KhanhRomVN/termi-tool/internal/secure"
)

// keyVault seals every account's API key into protected memory at
// construction and presents the rotation layer with a key-free view of
// the store. Keys are decrypted only for the duration of one request.
type keyVault struct {
	inner   accounts.Store
	keys    map[string]*secure.APIKey
	ordered []accounts.Credential
}

func newKeyVault(store accounts.Store) (*keyVault, error) {
	creds, err := store.List()
	if err != nil {
		return nil, err
	}

	v := &keyVault{
		inner:   store,
		keys:    make(map[string]*secure.APIKey, len(creds)),
		ordered: make([]accounts.Credential, len(creds)),
	}
	for i, cred := range creds {
		v.keys[cred.Name] = secure.NewAPIKey(cred.Key)
		v.ordered[i] = accounts.Credential{Name: cred.Name}
	}
	return v, nil
}

// List returns the credential set with keys stripped; they stay sealed
// until Reveal.
func (v *keyVault) List() ([]accounts.Credential, error) {
	return v.ordered, nil
}

// Current delegates to the underlying store's pointer.
func (v *keyVault) Current() (string, bool) {
	return v.inner.Current()
}

// Reveal decrypts the named account's key for the duration of fn.
func (v *keyVault) Reveal(name string, fn func(key string) error) error {
	key, ok := v.keys[name]
	if !ok {
		return fmt.Errorf("no key sealed for account %s", name)
	}
	return key.Reveal(fn)
}

// Destroy drops all sealed keys.
func (v *keyVault) Destroy() {
	for _, key := range v.keys {
		key.Destroy()
	}
}
