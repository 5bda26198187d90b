// Package accounts manages the Gemini account registry: the accounts.json
// file, the current-account pointer, and the optional OS keychain backend
// for API keys.
package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KhanhRomVN/termi-tool/internal/errclass"
)

const addedAtLayout = "2006-01-02 15:04:05"

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

// Credential pairs an account name with its API key. Read-only to
// consumers; only the store mutates the underlying registry.
type Credential struct {
	Name string
	Key  string
}

// Account is the persisted per-account record. APIKey is empty when the
// key lives in the OS keychain instead of the file.
type Account struct {
	APIKey  string `json:"api_key,omitempty"`
	AddedAt string `json:"added_at"`
}

// Store is the read-only view the rotation layer needs: the ordered
// credential list and the current-account pointer.
type Store interface {
	List() ([]Credential, error)
	Current() (string, bool)
}

// FileStore keeps accounts under a single directory:
//
//	<dir>/accounts.json     account records keyed by email
//	<dir>/current_account   name of the active account
type FileStore struct {
	dir     string
	keyring KeyBackend
	mu      sync.Mutex
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithKeyring stores API keys in the given backend instead of accounts.json.
func WithKeyring(kb KeyBackend) Option {
	return func(fs *FileStore) { fs.keyring = kb }
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	fs := &FileStore{dir: dir}
	for _, opt := range opts {
		opt(fs)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create accounts directory: %w", err)
	}
	return fs, nil
}

// DefaultDir returns the account directory, honoring the TERMI_TOOL_DIR
// override used by tests and scripts.
func DefaultDir() string {
	if dir := os.Getenv("TERMI_TOOL_DIR"); dir != "" {
		return filepath.Join(dir, "gemini")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".termi-tool", "gemini")
	}
	return filepath.Join(os.TempDir(), "termi-tool", "gemini")
}

// Add registers a new account. The first account added becomes current.
func (fs *FileStore) Add(name, key string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errclass.UserError{
			Message:    "Account name is required",
			Suggestion: "Provide the Gmail address the API key belongs to",
		}
	}
	if strings.TrimSpace(key) == "" {
		return errclass.UserError{
			Message:    "API key is required",
			Suggestion: "Create a key at https://aistudio.google.com/apikey",
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return err
	}
	if _, exists := records[name]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, name)
	}

	acct := Account{AddedAt: time.Now().Format(addedAtLayout)}
	if fs.keyring != nil {
		if err := fs.keyring.Set(name, key); err != nil {
			return fmt.Errorf("failed to store key in keychain: %w", err)
		}
	} else {
		acct.APIKey = key
	}
	records[name] = acct

	if err := fs.save(records); err != nil {
		if fs.keyring != nil {
			_ = fs.keyring.Delete(name)
		}
		return err
	}

	if len(records) == 1 {
		return fs.writeCurrent(name)
	}
	return nil
}

// List returns credentials in registration order (oldest first, name as
// tiebreaker). Keys are pulled from the keychain when that backend is on.
func (fs *FileStore) List() ([]Credential, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := records[names[i]], records[names[j]]
		if a.AddedAt == b.AddedAt {
			return names[i] < names[j]
		}
		return a.AddedAt < b.AddedAt
	})

	creds := make([]Credential, 0, len(names))
	for _, name := range names {
		key := records[name].APIKey
		if fs.keyring != nil {
			key, err = fs.keyring.Get(name)
			if err != nil {
				return nil, fmt.Errorf("failed to read key for %s from keychain: %w", name, err)
			}
		}
		creds = append(creds, Credential{Name: name, Key: key})
	}
	return creds, nil
}

// Names returns account names in registration order without touching keys.
func (fs *FileStore) Names() ([]string, error) {
	creds, err := fs.listMetadataOnly()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(creds))
	for i, c := range creds {
		names[i] = c.Name
	}
	return names, nil
}

func (fs *FileStore) listMetadataOnly() ([]Credential, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := records[names[i]], records[names[j]]
		if a.AddedAt == b.AddedAt {
			return names[i] < names[j]
		}
		return a.AddedAt < b.AddedAt
	})
	creds := make([]Credential, len(names))
	for i, name := range names {
		creds[i] = Credential{Name: name}
	}
	return creds, nil
}

// Current returns the active account name, if one is set.
func (fs *FileStore) Current() (string, bool) {
	data, err := os.ReadFile(filepath.Join(fs.dir, "current_account"))
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

// Switch marks the named account as current.
func (fs *FileStore) Switch(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return err
	}
	if _, exists := records[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return fs.writeCurrent(name)
}

// Remove deletes an account. Removing the current account promotes the
// oldest remaining one; removing the last account clears the pointer.
func (fs *FileStore) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return err
	}
	if _, exists := records[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}

	delete(records, name)
	if fs.keyring != nil {
		if err := fs.keyring.Delete(name); err != nil {
			return fmt.Errorf("failed to remove key from keychain: %w", err)
		}
	}
	if err := fs.save(records); err != nil {
		return err
	}

	current, ok := fs.readCurrent()
	if !ok || current != name {
		return nil
	}
	if len(records) == 0 {
		return os.Remove(filepath.Join(fs.dir, "current_account"))
	}

	names := make([]string, 0, len(records))
	for n := range records {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := records[names[i]], records[names[j]]
		if a.AddedAt == b.AddedAt {
			return names[i] < names[j]
		}
		return a.AddedAt < b.AddedAt
	})
	return fs.writeCurrent(names[0])
}

// AddedAt returns the recorded registration time for an account.
func (fs *FileStore) AddedAt(name string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return "", err
	}
	acct, exists := records[name]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return acct.AddedAt, nil
}

func (fs *FileStore) load() (map[string]Account, error) {
	path := filepath.Join(fs.dir, "accounts.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Account{}, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	if err := ValidateAccountsJSON(data); err != nil {
		return nil, errclass.UserError{
			Message:    "Accounts file is malformed",
			Details:    err.Error(),
			Suggestion: fmt.Sprintf("Inspect or delete %s and re-add your accounts", path),
			Err:        err,
		}
	}

	var records map[string]Account
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	if records == nil {
		records = map[string]Account{}
	}
	return records, nil
}

func (fs *FileStore) save(records map[string]Account) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	path := filepath.Join(fs.dir, "accounts.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	return nil
}

func (fs *FileStore) readCurrent() (string, bool) {
	data, err := os.ReadFile(filepath.Join(fs.dir, "current_account"))
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

func (fs *FileStore) writeCurrent(name string) error {
	path := filepath.Join(fs.dir, "current_account")
	if err := os.WriteFile(path, []byte(name), 0600); err != nil {
		return fmt.Errorf("failed to write current account pointer: %w", err)
	}
	return nil
}
