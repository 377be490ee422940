// Package mappingstore loads and saves the counterparty lookup tables used
// by the name normalizer.
package mappingstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"

	"gopkg.in/yaml.v3"
)

// Default file names for the lookup tables
const (
	DefaultNamesFile    = "names.yaml"
	DefaultAccountsFile = "accounts.yaml"
)

// MappingStore manages the name and account-number lookup tables.
// Each table is a flat YAML map of raw value to canonical counterparty key.
type MappingStore struct {
	NamesFile    string
	AccountsFile string
	logger       logging.Logger
}

// NewMappingStore creates a store for the given files. Empty names fall back
// to the defaults.
func NewMappingStore(namesFile, accountsFile string, logger logging.Logger) *MappingStore {
	if namesFile == "" {
		namesFile = DefaultNamesFile
	}
	if accountsFile == "" {
		accountsFile = DefaultAccountsFile
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &MappingStore{
		NamesFile:    namesFile,
		AccountsFile: accountsFile,
		logger:       logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "ledger-sync", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadNameMappings loads the counterparty name table
func (s *MappingStore) LoadNameMappings() (map[string]string, error) {
	return s.loadMap(s.NamesFile, "name")
}

// LoadAccountMappings loads the account-number table
func (s *MappingStore) LoadAccountMappings() (map[string]string, error) {
	return s.loadMap(s.AccountsFile, "account")
}

// SaveNameMappings writes the counterparty name table
func (s *MappingStore) SaveNameMappings(mappings map[string]string) error {
	return s.saveMap(s.NamesFile, "name", mappings)
}

// SaveAccountMappings writes the account-number table
func (s *MappingStore) SaveAccountMappings(mappings map[string]string) error {
	return s.saveMap(s.AccountsFile, "account", mappings)
}

func (s *MappingStore) loadMap(filename, kind string) (map[string]string, error) {
	filePath, err := FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Mapping file not found, using empty table",
				logging.Field{Key: logging.FieldInputFile, Value: filename},
				logging.Field{Key: logging.FieldTable, Value: kind})
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error resolving %s mappings file: %w", kind, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading %s mappings file: %w", kind, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing %s mappings: %w", kind, err)
	}

	// Keys are matched after trimming, so store them trimmed.
	mappings := make(map[string]string, len(raw))
	for k, v := range raw {
		mappings[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	s.logger.Debug("Loaded mappings",
		logging.Field{Key: logging.FieldInputFile, Value: filePath},
		logging.Field{Key: logging.FieldTable, Value: kind},
		logging.Field{Key: logging.FieldCount, Value: len(mappings)})
	return mappings, nil
}

func (s *MappingStore) saveMap(filename, kind string, mappings map[string]string) error {
	filePath, err := FindConfigFile(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error resolving %s mappings file: %w", kind, err)
	}

	// New files go to the database directory unless an absolute path was given
	if err != nil {
		if filepath.IsAbs(filename) {
			filePath = filename
		} else {
			filePath = filepath.Join("database", filename)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("error marshaling %s mappings: %w", kind, err)
	}

	if err := os.WriteFile(filePath, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing %s mappings: %w", kind, err)
	}

	s.logger.Debug("Saved mappings",
		logging.Field{Key: logging.FieldOutputFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(mappings)})
	return nil
}
