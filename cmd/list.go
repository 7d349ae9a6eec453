package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/documents"
	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var (
	listAddress string
	listJSON    bool
)

func init() {
	listCmd.Flags().StringVar(&listAddress, "address", "", "address to list (default is your wallet address)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

// resetListCommandState resets the list command's global state for testing.
func resetListCommandState() {
	listAddress = ""
	listJSON = false
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents you own and documents shared with you",
	Long: `Lists the records owned by an address and the shares addressed to it.

Without --address your wallet address is used.

Examples:
  securechain list
  securechain list --address 0x2c7536E3605D9C16a7a3D7b1898e529396a65c23
  securechain list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting list command")
	ctx := cmd.Context()

	address := listAddress
	var w workflows.Wallet
	var walletErr error
	if address == "" {
		w, walletErr = openWallet()
	}

	spinner, cleanup := startSpinner("Listing documents...", verbose || listJSON)
	defer cleanup()
	if walletErr != nil {
		return fail(spinner, walletErr)
	}

	svc, closeServices, err := openServices()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to open local state: %v", err)
	}
	defer closeServices()

	if w != nil {
		address, err = w.Address(ctx)
		if err != nil {
			return fail(spinner, err)
		}
	}

	listing, err := svc.List(ctx, workflows.ListOptions{Address: address})
	if err != nil {
		return fail(spinner, err)
	}

	if listJSON {
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal listing to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(listing.Owned) == 0 && len(listing.Shared) == 0 {
		spinner.FinalMSG = ui.MarkNote.String() + " No documents for " + ui.Highlight.Sprint(address)
		return nil
	}

	spinner.FinalMSG = fmt.Sprintf("Documents for %s\n\n%s\n%s", ui.Highlight.Sprint(address),
		formatDocuments("Owned", listing.Owned, false),
		formatDocuments("Shared with you", listing.Shared, true))
	return nil
}

func formatDocuments(title string, docs []*documents.Document, shared bool) string {
	out := fmt.Sprintf("%s (%d)\n", ui.Success.Sprint(title), len(docs))
	for _, d := range docs {
		party := d.RecipientAddress
		if shared {
			party = d.OwnerAddress
		}
		if d.Type == documents.KindUpload {
			party = "-"
		}
		out += fmt.Sprintf("  %-19s  %-6s  %-15s  %s  %s\n",
			d.CreatedAt.Local().Format("2006-01-02 15:04:05"), d.Type, ui.ShortAddress.Sprint(party),
			ui.ID.Sprint(d.ID), ui.Path.Sprint(d.FileName))
	}
	return out
}
