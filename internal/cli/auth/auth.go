package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/minimalprod/erpctl/internal/cli/session"
)

const (
	service = "erpctl"
)

// KeyringStorage keeps the session entries of one server in the OS
// keychain/credential manager.
type KeyringStorage struct {
	server string
}

var _ session.Storage = (*KeyringStorage)(nil)

// NewKeyringStorage returns the keyring storage for the server at baseURL
func NewKeyringStorage(baseURL string) *KeyringStorage {
	return &KeyringStorage{server: baseURL}
}

// getKeyringKey returns a unique key for an entry per server
func (k *KeyringStorage) getKeyringKey(key string) string {
	return fmt.Sprintf("%s-%s", key, k.server)
}

// Get retrieves an entry from the OS keychain/credential manager
func (k *KeyringStorage) Get(key string) (string, bool, error) {
	value, err := keyring.Get(service, k.getKeyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

// Set persists an entry securely in the OS keychain/credential manager
func (k *KeyringStorage) Set(key, value string) error {
	if err := keyring.Set(service, k.getKeyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry from the OS keychain/credential manager
func (k *KeyringStorage) Delete(key string) error {
	if err := keyring.Delete(service, k.getKeyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
