package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

const lastRunFile = "last-run.yaml"

// Store persists the settings of the last successful run so the next run
// can offer them as defaults. Secret fields are tagged yaml:"-" and never
// reach disk.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir; an empty dir means the user config dir
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Dir(DefaultPath())
	}
	return &Store{dir: dir}
}

// Path returns the location of the stored settings
func (s *Store) Path() string {
	return filepath.Join(s.dir, lastRunFile)
}

// Load returns the stored settings, or nil when nothing has been saved
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}
	if err := mergeFile(cfg, s.Path()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg, without secrets, with owner-only permissions
func (s *Store) Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to encode settings", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to create config directory", err).
			WithDetail("path", s.dir)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to write settings", err).
			WithDetail("path", tmp)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to replace settings", err).
			WithDetail("path", s.Path())
	}
	return nil
}

// Reset removes the stored settings. Removing nothing is not an error.
func (s *Store) Reset() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to remove settings", err).
			WithDetail("path", s.Path())
	}
	return nil
}
