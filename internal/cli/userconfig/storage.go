package userconfig

import (
	"sync"

	"github.com/minimalprod/erpctl/internal/cli/session"
)

// FileStorage keeps the session entries of one server in the user config
// file. Used where no OS keyring is available (CI, containers).
type FileStorage struct {
	mu     sync.Mutex
	server string
}

var _ session.Storage = (*FileStorage)(nil)

// NewFileStorage returns the file storage for the server at baseURL
func NewFileStorage(baseURL string) *FileStorage {
	return &FileStorage{server: baseURL}
}

// Get reads an entry of this server from the user config file
func (f *FileStorage) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := Load()
	if err != nil {
		return "", false, err
	}
	value, ok := cfg.Sessions[f.server][key]
	return value, ok, nil
}

// Set writes an entry of this server to the user config file
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := Load()
	if err != nil {
		return err
	}
	if cfg.Sessions == nil {
		cfg.Sessions = map[string]map[string]string{}
	}
	if cfg.Sessions[f.server] == nil {
		cfg.Sessions[f.server] = map[string]string{}
	}
	cfg.Sessions[f.server][key] = value
	return Save(cfg)
}

// Delete removes an entry of this server from the user config file
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := Load()
	if err != nil {
		return err
	}
	entries, ok := cfg.Sessions[f.server]
	if !ok {
		return nil
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(cfg.Sessions, f.server)
	}
	return Save(cfg)
}
