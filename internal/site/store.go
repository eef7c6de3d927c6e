package site

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/checksum"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/storage"
)

// ConfigFile is the site configuration path relative to the site root.
const ConfigFile = "site.json"

// Store persists the configuration tree as JSON.
type Store struct {
	fs storage.Provider
}

// NewStore creates a store on top of a storage provider.
func NewStore(fs storage.Provider) *Store {
	return &Store{fs: fs}
}

// Load reads and decodes the configuration. It returns apperr.ErrNotFound
// when no configuration has been written yet.
func (s *Store) Load() (*models.Configuration, string, error) {
	ok, err := s.fs.Exists(ConfigFile)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("site: %s: %w", ConfigFile, apperr.ErrNotFound)
	}
	data, err := s.fs.Read(ConfigFile)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	return cfg, checksum.Sum(data), nil
}

// Checksum returns the checksum of the configuration file as it is on
// disk, or apperr.ErrNotFound when it does not exist.
func (s *Store) Checksum() (string, error) {
	ok, err := s.fs.Exists(ConfigFile)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("site: %s: %w", ConfigFile, apperr.ErrNotFound)
	}
	data, err := s.fs.Read(ConfigFile)
	if err != nil {
		return "", err
	}
	return checksum.Sum(data), nil
}

// Save writes cfg atomically and returns the checksum of the written bytes.
func (s *Store) Save(cfg *models.Configuration) (string, error) {
	if cfg == nil {
		return "", errors.New("site: save nil configuration")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("site: encode: %w", err)
	}
	data = append(data, '\n')
	if err := s.fs.Write(ConfigFile, data); err != nil {
		return "", err
	}
	return checksum.Sum(data), nil
}

// Path returns the absolute path of the configuration file.
func (s *Store) Path() (string, error) {
	return s.fs.Abs(ConfigFile)
}
