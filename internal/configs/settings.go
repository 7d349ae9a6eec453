package configs

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

type Settings struct {
	// ConfigPath is the user config file.
	ConfigPath string
	// DataDir holds blobs/, catalog/, registry/ and audit.jsonl.
	DataDir string
}

var UserSettings *Settings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	UserSettings = &Settings{
		ConfigPath: filepath.Join(configDir, "securechain", "config.toml"),
		DataDir:    filepath.Join(dataDir, "securechain"),
	}
}

func (s *Settings) BlobsPath() string {
	return filepath.Join(s.DataDir, "blobs")
}

func (s *Settings) CatalogPath() string {
	return filepath.Join(s.DataDir, "catalog")
}

func (s *Settings) RegistryPath() string {
	return filepath.Join(s.DataDir, "registry")
}

func (s *Settings) AuditLogPath() string {
	if s.DataDir == "" {
		return ""
	}
	return filepath.Join(s.DataDir, "audit.jsonl")
}

// Apply takes the data directory from the config file when it sets one.
func (s *Settings) Apply(cfg *Config) error {
	if cfg.Storage.DataDir == "" {
		return nil
	}
	dir, err := ExpandPath(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	s.DataDir = dir
	return nil
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
