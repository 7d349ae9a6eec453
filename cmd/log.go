package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/audit"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logAddress   string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logAddress, "address", "", "filter by wallet address")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logAddress = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the local audit log",
	Long: `Displays the audit log of operations run from this machine.

Shows which address performed what operation and when. Use filters to
narrow down the results.

Examples:
  securechain log                             # View full log
  securechain log -n 10                       # Last 10 entries
  securechain log --reverse                   # Most recent first
  securechain log --address 0x2c75...         # Filter by address
  securechain log --operation upload,share    # Filter by operation
  securechain log --since 2024-01-01          # Filter by date
  securechain log --json                      # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...", verbose || logJSON)
	defer cleanup()

	opts := workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Address:    logAddress,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	}

	result, err := workflows.Log(cmd.Context(), opts)
	if err != nil {
		spinner.FinalMSG = formatLogError(err)
		if errors.Is(err, kerrors.ErrInvalidDateFormat) {
			return nil
		}
		return err
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}
	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}
	outputLogDefault(result.Entries)
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	if errors.Is(err, kerrors.ErrInvalidDateFormat) {
		return ui.MarkFailed.String() + " " + err.Error()
	}
	return ui.MarkFailed.String() + " Failed to read audit log: " + err.Error()
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		date := workflows.FormatDateTime(e.Timestamp)
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Printf("%s %s %s %s\n", date, ui.ShortAddress.Sprint(e.Address), e.Operation, workflows.FormatDetails(e))
	}
}

func outputLogDefault(entries []audit.Entry) {
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		fmt.Printf("%-19s  %-42s  %-10s  %s\n", datetime, e.Address, e.Operation, workflows.FormatDetails(e))
	}
}
