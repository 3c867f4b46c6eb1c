package client

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenSource supplies the bearer token for outbound requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token() string { return string(t) }

// TokenStore keeps the bearer token in memory and optionally mirrors it to a file.
// The API client only reads from it; login and logout flows write to it.
type TokenStore struct {
	log   *slog.Logger
	mu    sync.RWMutex
	token string
	path  string
}

// NewTokenStore initializes a token store. When path is not empty the token is persisted there.
func NewTokenStore(log *slog.Logger, initial, path string) *TokenStore {
	return &TokenStore{
		log:   log,
		token: strings.TrimSpace(initial),
		path:  path,
		mu:    sync.RWMutex{},
	}
}

// Token returns the current token.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Load reads the token from the backing file. A missing file leaves the store unchanged.
func (s *TokenStore) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("Token file does not exist", "path", s.path)
			return nil
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token := strings.TrimSpace(string(data)); token != "" {
		s.token = token
	}

	return nil
}

// Set stores a new token and persists it.
func (s *TokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	s.log.Debug("Set token", "persisted", s.path != "")

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(s.token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Clear forgets the token and removes the backing file.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}

	return nil
}
