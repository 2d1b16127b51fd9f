package playcore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// CredentialBundle is the access/refresh token pair plus the user identifier
// of an authenticated session.
type CredentialBundle struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// HasTokens reports whether both tokens are present.
func (b CredentialBundle) HasTokens() bool {
	return b.AccessToken != "" && b.RefreshToken != ""
}

// TokenStore persists credentials across sessions. Implementations must be
// safe for concurrent use; the client reads the bundle on every authenticated
// request and writes it from the refresh coordinator.
type TokenStore interface {
	Load() (CredentialBundle, error)
	Save(CredentialBundle) error
	Clear() error
}

// MemoryTokenStore keeps credentials in process memory only.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	bundle CredentialBundle
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (CredentialBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle, nil
}

func (s *MemoryTokenStore) Save(b CredentialBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = b
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = CredentialBundle{}
	return nil
}

// FileTokenStore persists credentials as a JSON file. A missing file loads as
// an empty bundle so first runs need no setup.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore returns a store writing to path. Parent directories are
// created on first save.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (CredentialBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CredentialBundle{}, nil
		}
		return CredentialBundle{}, err
	}

	var bundle CredentialBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return CredentialBundle{}, err
	}
	return bundle, nil
}

func (s *FileTokenStore) Save(b CredentialBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	// Write-then-rename so a crash never leaves a truncated bundle.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
