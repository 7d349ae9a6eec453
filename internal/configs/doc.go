// Package configs manages the securechain config file and the paths derived
// from it.
//
// Configuration is stored in TOML at $XDG_CONFIG_HOME/securechain/config.toml:
//
//	[wallet]
//	keystore = "/path/to/keystore.json"
//	login_message = "SECURECHAIN_LOGIN"
//
//	[storage]
//	data_dir = "~/.local/share/securechain"
//
//	[catalog]
//	url = ""
//	listen = ":8080"
//
//	[cipher]
//	time = 1
//	memory_kib = 65536
//	threads = 4
//
// # Settings
//
// UserSettings is initialized at startup with the config path and the data
// directory. Settings.Apply lets the config file move the data directory.
// Tests override the fields directly.
package configs
