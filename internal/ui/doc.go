// Package ui provides semantic text formatting for CLI output.
//
// This package defines formatters for different types of content (code,
// paths, errors, etc.) that render appropriately based on terminal
// capabilities. When colors are available, content is colorized. When
// NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
// Use the appropriate formatter for the content type:
//
//	ui.Code.Sprint("securechain register")    // Commands and code
//	ui.Path.Sprint("~/.config/securechain")   // File paths
//	ui.Warning.Sprint("[dry-run]")             // Warnings
//	ui.Highlight.Sprint(address)              // User values
//	ui.ID.Sprint(locator)                     // Ids meant to be copied
//	ui.ShortID.Sprint(locator)                // bafkreig...qa4s52zy
//	ui.ShortAddress.Sprint(address)           // 0x2c75...a65c23
//	ui.Muted.Sprint("optional")               // De-emphasized text
//
// Final spinner messages lead with a Mark (ui.MarkDone, ui.MarkFailed,
// ui.MarkNext, ui.MarkNote, ui.MarkWarn). Role, Registration and
// Verification render document roles and registry answers the same way
// in every command.
//
// # Color Behavior
//
// Colors are disabled when:
//   - NO_COLOR environment variable is set (any value)
//   - Terminal doesn't support colors (TERM=dumb, not a TTY)
//
// When colors are disabled, formatters apply text decorations:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//   - Others: no decoration (self-evident from context)
package ui
