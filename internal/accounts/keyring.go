package accounts

import (
	"github.com/zalando/go-keyring"
)

// keyringService is the service name termi-tool registers with the OS
// keychain (macOS Keychain, Linux Secret Service, Windows Credential
// Manager via go-keyring).
const keyringService = "termi-tool.gemini"

// KeyBackend stores API keys outside accounts.json. Implementations must
// be safe for use under the store's lock.
type KeyBackend interface {
	Set(account, key string) error
	Get(account string) (string, error)
	Delete(account string) error
}

// OSKeyring is the go-keyring backed KeyBackend.
type OSKeyring struct{}

func (OSKeyring) Set(account, key string) error {
	return keyring.Set(keyringService, account, key)
}

func (OSKeyring) Get(account string) (string, error) {
	return keyring.Get(keyringService, account)
}

func (OSKeyring) Delete(account string) error {
	return keyring.Delete(keyringService, account)
}
