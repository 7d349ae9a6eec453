// Package logger provides leveled, colored logging for securechain.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with colored prefixes from fatih/color.
//
// # Verbosity Levels
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details and errors
//
// Without flags, only WarnfAlways output is shown. The zero Logger is
// therefore quiet, which is what workflows get when the caller passes none.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Uploaded %s as %s", name, id)
//
// Keys are never logged. Public keys, locators and document ids may be.
//
// The Badger type bridges the logger into badger.Options.Logger so the
// embedded catalog and registry databases log through the same channel.
package logger
