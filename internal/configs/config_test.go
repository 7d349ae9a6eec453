package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Wallet.LoginMessage != DefaultLoginMessage {
		t.Errorf("Expected login message %q, got %q", DefaultLoginMessage, config.Wallet.LoginMessage)
	}
	if config.Catalog.Listen != ":8080" {
		t.Errorf("Expected listen :8080, got %q", config.Catalog.Listen)
	}
	if err := config.Cipher.Params().Validate(); err != nil {
		t.Errorf("Default cipher params invalid: %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "securechain", "config.toml")

	config := DefaultConfig()
	config.Wallet.Keystore = "/keys/wallet.json"
	config.Storage.DataDir = "/data/securechain"
	config.Catalog.URL = "http://localhost:8080"
	config.Cipher.MemoryKiB = 128 * 1024

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *config {
		t.Errorf("Expected %+v, got %+v", config, loaded)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[catalog]\nurl = \"https://catalog.example.com\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Catalog.URL != "https://catalog.example.com" {
		t.Errorf("Expected catalog url to be read, got %q", config.Catalog.URL)
	}
	if config.Catalog.Listen != ":8080" || config.Wallet.LoginMessage != DefaultLoginMessage {
		t.Errorf("Expected defaults for unset fields, got %+v", config)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "[wallet]\nkeystor = \"typo\"\n",
		"bad cipher":    "[cipher]\ntime = 0\n",
		"bad url":       "[catalog]\nurl = \"ftp://catalog\"\n",
		"empty message": "[wallet]\nlogin_message = \"\"\n",
		"not toml":      "this is = = not toml",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("Expected error, got nil")
			}
		})
	}
}

func TestSettingsApply(t *testing.T) {
	settings := &Settings{DataDir: "/default"}

	if err := settings.Apply(DefaultConfig()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if settings.DataDir != "/default" {
		t.Errorf("Expected data dir unchanged, got %q", settings.DataDir)
	}

	config := DefaultConfig()
	config.Storage.DataDir = "~/sc-data"
	if err := settings.Apply(config); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	if settings.DataDir != filepath.Join(home, "sc-data") {
		t.Errorf("Expected expanded data dir, got %q", settings.DataDir)
	}

	if settings.AuditLogPath() != filepath.Join(home, "sc-data", "audit.jsonl") {
		t.Errorf("Unexpected audit path %q", settings.AuditLogPath())
	}
	if settings.BlobsPath() != filepath.Join(home, "sc-data", "blobs") {
		t.Errorf("Unexpected blobs path %q", settings.BlobsPath())
	}
}

func TestUserSettingsInitialized(t *testing.T) {
	if UserSettings == nil {
		t.Fatal("UserSettings not initialized")
	}
	if filepath.Base(UserSettings.ConfigPath) != "config.toml" {
		t.Errorf("Unexpected config path %q", UserSettings.ConfigPath)
	}
	if filepath.Base(UserSettings.DataDir) != "securechain" {
		t.Errorf("Unexpected data dir %q", UserSettings.DataDir)
	}
}
