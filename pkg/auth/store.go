package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store keys for the persisted credential.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Store is a durable key/value store for opaque token strings, one file per
// key under a config directory (files 0600, directory 0700). It performs no
// validation of the values it holds.
//
// If the directory cannot be created or written the store degrades to
// in-memory persistence for the lifetime of the process; callers are never
// failed because storage is unavailable.
type Store struct {
	mu       sync.Mutex
	dir      string
	mem      map[string]string
	degraded bool
}

// NewStore opens (creating if needed) a store rooted at dir.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, mem: make(map[string]string)}
	if err := os.MkdirAll(dir, 0700); err != nil {
		s.degraded = true
	}
	return s
}

// DefaultDir returns ~/.commhub, the conventional config directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".commhub"), nil
}

// Get returns the stored value for key, or "" when absent.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return s.mem[key]
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return s.mem[key]
	}
	return strings.TrimSpace(string(data))
}

// Set writes value for key. An empty string is written out as-is rather
// than treated as a delete, so a partial read never sees a stale value.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[key] = value
	if s.degraded {
		return
	}
	if err := os.WriteFile(s.path(key), []byte(value), 0600); err != nil {
		s.degraded = true
	}
}

// Remove deletes key. Missing keys are not an error.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mem, key)
	if s.degraded {
		return
	}
	os.Remove(s.path(key)) //nolint:errcheck // best-effort delete
}

// Clear removes every key the store knows about.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.mem {
		if !s.degraded {
			os.Remove(s.path(key)) //nolint:errcheck
		}
		delete(s.mem, key)
	}
	if s.degraded {
		return
	}
	// Keys persisted by an earlier process may not be in mem yet.
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		os.Remove(s.path(key)) //nolint:errcheck
	}
}

// Degraded reports whether the store has fallen back to memory-only mode.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}
