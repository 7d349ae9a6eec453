package cmd

import (
	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var (
	shareTo     string
	sharePubKey string
)

func init() {
	shareCmd.Flags().StringVar(&shareTo, "to", "", "recipient address")
	shareCmd.Flags().StringVar(&sharePubKey, "pubkey", "", "recipient public key (default is the registered key)")
	_ = shareCmd.MarkFlagRequired("to")
}

// resetShareCommandState resets the share command's global state for testing.
func resetShareCommandState() {
	shareTo = ""
	sharePubKey = ""
}

var shareCmd = &cobra.Command{
	Use:   "share <document-id>",
	Short: "Share one of your uploads with another address",
	Long: `Decrypts one of your uploads and publishes a copy encrypted under the key
shared between you and the recipient. Your original upload is untouched.

The recipient's public key is read from the registry unless --pubkey is given.

Examples:
  securechain share bafkrei... --to 0x2c7536E3605D9C16a7a3D7b1898e529396a65c23
  securechain share bafkrei... --to 0x2c75... --pubkey 04ab...`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

func runShare(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting share command")
	ctx := cmd.Context()

	w, err := openWallet()
	spinner, cleanup := startSpinner("Sharing...", verbose)
	defer cleanup()
	if err != nil {
		return fail(spinner, err)
	}

	svc, closeServices, err := openServices()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to open local state: %v", err)
	}
	defer closeServices()

	sess, err := signIn(ctx, svc, w)
	if err != nil {
		return fail(spinner, err)
	}
	defer sess.Close()

	result, err := svc.Share(ctx, workflows.ShareOptions{
		Session:            sess,
		DocumentID:         args[0],
		RecipientAddress:   shareTo,
		RecipientPublicKey: sharePubKey,
	})
	if err != nil {
		return fail(spinner, err)
	}

	spinner.FinalMSG = ui.MarkDone.String() + " Shared " + ui.Highlight.Sprint(result.Document.FileName) +
		" with " + ui.Highlight.Sprint(result.Document.RecipientAddress) + "\n" +
		"  " + ui.ID.Sprint(result.DocumentID) + "\n" +
		ui.MarkNext.String() + " The recipient can run " + ui.Code.Sprint("securechain download "+result.DocumentID)
	return nil
}
