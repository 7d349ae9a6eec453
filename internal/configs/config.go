package configs

import (
	"fmt"
	"net/url"
	"os"

	"github.com/akhil-is-watching/securechain/internal/secrets"
)

// DefaultLoginMessage is the message a wallet signs to unlock its keypair.
const DefaultLoginMessage = "SECURECHAIN_LOGIN"

type Config struct {
	Wallet  WalletConfig  `toml:"wallet"`
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Cipher  CipherConfig  `toml:"cipher"`
}

type WalletConfig struct {
	// Keystore is a keystore v3 file. Ignored when SECURECHAIN_WALLET_KEY is set.
	Keystore     string `toml:"keystore"`
	LoginMessage string `toml:"login_message"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type CatalogConfig struct {
	// URL selects a remote catalog. Empty means the local one in DataDir.
	URL    string `toml:"url"`
	Listen string `toml:"listen"`
}

type CipherConfig struct {
	Time      uint32 `toml:"time"`
	MemoryKiB uint32 `toml:"memory_kib"`
	Threads   uint8  `toml:"threads"`
}

var GlobalConfig *Config

func DefaultConfig() *Config {
	return &Config{
		Wallet:  WalletConfig{LoginMessage: DefaultLoginMessage},
		Catalog: CatalogConfig{Listen: ":8080"},
		Cipher: CipherConfig{
			Time:      secrets.DefaultParams.Time,
			MemoryKiB: secrets.DefaultParams.MemoryKiB,
			Threads:   secrets.DefaultParams.Threads,
		},
	}
}

func (c CipherConfig) Params() secrets.Params {
	return secrets.Params{Time: c.Time, MemoryKiB: c.MemoryKiB, Threads: c.Threads}
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults; fields left out of the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes the config file at path.
func SaveConfig(path string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Wallet.LoginMessage == "" {
		return fmt.Errorf("wallet.login_message must not be empty")
	}
	if err := c.Cipher.Params().Validate(); err != nil {
		return fmt.Errorf("cipher: %w", err)
	}
	if c.Catalog.URL != "" {
		u, err := url.Parse(c.Catalog.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("catalog.url %q is not an http(s) URL", c.Catalog.URL)
		}
	}
	return nil
}
