// Package audit provides the audit trail of securechain workflows.
//
// Every completed upload, download, share, verify and key registration is
// recorded in a log in the data directory. Sign-in is not recorded.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	<data_dir>/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Wallet address and workflow run id
//   - Operation name
//   - Operation-specific details (document id, locator, recipient)
//
// No key material is ever written.
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
