// Package utils provides shared helpers for the securechain CLI.
//
// # File Utilities
//
//   - ResolveFiles: expands paths, directories and ** globs into files to upload
//   - WriteFile: writes downloaded content atomically with 0600 permissions
//
// # String Utilities
//
//   - Abbreviate: shortens locators and public keys for tables
//
// # I/O Utilities
//
//   - ReadStdin: reads piped file content
//
// # Terminal Utilities
//
//   - ReadPassphrase: reads a keystore passphrase without echo
//   - ReadPassphraseFromTTY: the same, from /dev/tty when stdin is piped
//   - IsTerminal: checks if stdin is a terminal
package utils
