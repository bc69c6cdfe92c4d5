// Package filestore keeps passwordless identities in a JSON file on the local disk.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/repositories"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
)

// PasswordlessIdentityStore implements repositories.PasswordlessIdentityRepository on top of a
// single JSON file mapping client IDs to identities. It is safe for concurrent use within one process.
type PasswordlessIdentityStore struct {
	path string
	mu   sync.Mutex
}

var _ repositories.PasswordlessIdentityRepository = (*PasswordlessIdentityStore)(nil)

// NewPasswordlessIdentityStore creates a store backed by the file at path. The file is created on first save.
func NewPasswordlessIdentityStore(path string) *PasswordlessIdentityStore {
	return &PasswordlessIdentityStore{path: path}
}

// DefaultPath returns the store location under the user's config directory
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "lock", "passwordless.json"), nil
}

// Path returns the backing file
func (s *PasswordlessIdentityStore) Path() string {
	return s.path
}

func (s *PasswordlessIdentityStore) Get(_ context.Context, clientID string) (*entities.PasswordlessIdentity, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		metrics.RecordDBOperation("passwordless_identity_file", "get", time.Since(start), -1, err)
		return nil, err
	}
	record, ok := records[clientID]
	if !ok {
		metrics.RecordDBOperation("passwordless_identity_file", "get", time.Since(start), 0, nil)
		return nil, repositories.ErrIdentityNotFound
	}
	metrics.RecordDBOperation("passwordless_identity_file", "get", time.Since(start), 1, nil)
	return record, nil
}

func (s *PasswordlessIdentityStore) Save(_ context.Context, identity *entities.PasswordlessIdentity) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err == nil {
		saved := *identity
		if identity.Country != nil {
			country := *identity.Country
			saved.Country = &country
		}
		records[identity.ClientID] = &saved
		err = s.write(records)
	}
	metrics.RecordDBOperation("passwordless_identity_file", "save", time.Since(start), 1, err)
	return err
}

func (s *PasswordlessIdentityStore) Delete(_ context.Context, clientID string) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		metrics.RecordDBOperation("passwordless_identity_file", "delete", time.Since(start), -1, err)
		return err
	}
	if _, ok := records[clientID]; !ok {
		metrics.RecordDBOperation("passwordless_identity_file", "delete", time.Since(start), 0, nil)
		return nil
	}
	delete(records, clientID)
	err = s.write(records)
	metrics.RecordDBOperation("passwordless_identity_file", "delete", time.Since(start), 1, err)
	return err
}

// HealthCheck verifies the store file can be read
func (s *PasswordlessIdentityStore) HealthCheck(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

// load reads the file; a missing file is an empty store
func (s *PasswordlessIdentityStore) load() (map[string]*entities.PasswordlessIdentity, error) {
	records := make(map[string]*entities.PasswordlessIdentity)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read passwordless store: %w", err)
	}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse passwordless store %s: %w", s.path, err)
	}
	return records, nil
}

// write replaces the file through a temp file and rename
func (s *PasswordlessIdentityStore) write(records map[string]*entities.PasswordlessIdentity) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal passwordless store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".passwordless-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write passwordless store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write passwordless store: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to set store permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace passwordless store: %w", err)
	}

	slog.Debug("passwordless store written",
		slog.String("component", "filestore"),
		slog.String("path", s.path),
		slog.Int("records", len(records)))
	return nil
}
