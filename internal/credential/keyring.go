package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrSecretNotFound is returned by SecretStore.Get for a missing entry.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore is an OS-level secret store keyed by service and account.
type SecretStore interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// KeyringStore is the SecretStore backed by the platform keychain
// (macOS Keychain, Secret Service, Windows Credential Manager).
type KeyringStore struct{}

// Get implements SecretStore.
func (KeyringStore) Get(service, account string) (string, error) {
	v, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keychain read: %w", err)
	}
	return v, nil
}

// Set implements SecretStore.
func (KeyringStore) Set(service, account, value string) error {
	if err := keyring.Set(service, account, value); err != nil {
		return fmt.Errorf("keychain write: %w", err)
	}
	return nil
}

// MemoryStore is an in-process SecretStore for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

// Get implements SecretStore.
func (m *MemoryStore) Get(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.secrets[service+"/"+account]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

// Set implements SecretStore.
func (m *MemoryStore) Set(service, account, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[service+"/"+account] = value
	return nil
}
