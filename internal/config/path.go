package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppName = "quill"

	CredentialsFile = "credentials.yaml"
	StateDBFile     = "state.db"
	ConfigFile      = "config.yaml"
)

const (
	ProviderGoogle  = "google"
	ProviderEd25519 = "ed25519"
	ProviderToken   = "token"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	JournalOff  = "off"
)

// StateDir returns the directory holding local state, creating it if needed.
func (c *Config) StateDir() (string, error) {
	dir := c.State.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, AppName)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}
	return dir, nil
}

func (c *Config) CredentialsPath() (string, error) {
	dir, err := c.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CredentialsFile), nil
}

func (c *Config) DatabasePath() (string, error) {
	dir, err := c.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateDBFile), nil
}
