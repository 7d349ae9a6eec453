package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/akhil-is-watching/securechain/internal/configs"
)

// TimestampFormat is the layout of Entry.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`      // RFC3339 with microseconds.
	Operation string `json:"op"`      // Operation name.
	Address   string `json:"address"` // Wallet address performing the action.
	RunID     string `json:"run"`     // Workflow run id.

	// Optional fields depending on operation.
	Document  string `json:"document,omitempty"`  // For upload/download/share/verify.
	Locator   string `json:"locator,omitempty"`   // For upload/share.
	Source    string `json:"source,omitempty"`    // For share.
	Recipient string `json:"recipient,omitempty"` // For share.
	FileName  string `json:"file,omitempty"`      // For upload.
	Verified  *bool  `json:"verified,omitempty"`  // For verify.
}

// Log appends an entry to the audit log.
// Operations should not fail just because audit logging failed, so errors
// are swallowed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file, or "" when no data
// directory is configured.
func LogPath() string {
	if configs.UserSettings == nil {
		return ""
	}
	return configs.UserSettings.AuditLogPath()
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Time parses the entry timestamp.
func (e Entry) Time() (time.Time, error) {
	t, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		t, err = time.Parse(time.RFC3339, e.Timestamp)
	}
	return t, err
}
