// Package session holds the bearer token used to talk to the backend.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store is a process-wide token store. When a path is set the token is also
// kept on disk so the CLI can reuse it between runs.
type Store struct {
	mu     sync.RWMutex
	token  string
	path   string
	logger *zap.Logger
}

// NewStore returns an in-memory store seeded with token.
func NewStore(token string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{token: strings.TrimSpace(token), logger: logger}
}

// Open returns a store backed by the file at path. A missing file yields an
// empty store. A non-empty token argument takes precedence over the file.
func Open(path, token string, logger *zap.Logger) (*Store, error) {
	s := NewStore(token, logger)
	s.path = path
	if s.token != "" || path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// DefaultPath is ~/.anticrisis/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".anticrisis", "token"), nil
}

// Get returns the current token, empty when signed out.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the token and persists it when the store is file backed.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.path, err)
	}
	return nil
}

// Clear drops the token, including its file.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove token file",
			zap.String("op", "session.Clear"),
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
}
