package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/pdfdesk/internal/filex"
)

// TokenStore persists the session token between CLI runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single owner-readable file.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates dir if needed and stores the token in dir/name.
func NewFileTokenStore(dir, name string) (*FileTokenStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("token dir: %w", err)
	}
	return &FileTokenStore{path: filepath.Join(abs, name)}, nil
}

// Load returns "" without error when no token was saved.
func (s *FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileTokenStore) Save(token string) error {
	return filex.WriteFileAtomic(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
