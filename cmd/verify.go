package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/session"
	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var (
	verifyFile    string
	verifyDecrypt bool
)

func init() {
	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "local file to compare with the recorded digest")
	verifyCmd.Flags().BoolVar(&verifyDecrypt, "decrypt", false, "download the stored copy and compare it with the recorded digest")
	verifyCmd.MarkFlagsMutuallyExclusive("file", "decrypt")
}

// resetVerifyCommandState resets the verify command's global state for testing.
func resetVerifyCommandState() {
	verifyFile = ""
	verifyDecrypt = false
}

var verifyCmd = &cobra.Command{
	Use:   "verify <document-id>",
	Short: "Check that a document is recorded in the registry",
	Long: `Asks the registry whether a document is recorded and shows who recorded it.

With --file, the local file is hashed and compared with the recorded digest.
With --decrypt, the stored copy is downloaded, decrypted and compared; this
needs your wallet.

Examples:
  securechain verify bafkrei...
  securechain verify bafkrei... --file report.pdf
  securechain verify bafkrei... --decrypt`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting verify command")
	ctx := cmd.Context()

	opts := workflows.VerifyOptions{DocumentID: args[0]}
	if verifyFile != "" {
		content, err := os.ReadFile(verifyFile)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", verifyFile, err)
		}
		opts.Content = content
	}

	var w workflows.Wallet
	var walletErr error
	if verifyDecrypt {
		w, walletErr = openWallet()
	}

	spinner, cleanup := startSpinner("Verifying...", verbose)
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
		var sess *session.Session
		sess, err = signIn(ctx, svc, w)
		if err != nil {
			return fail(spinner, err)
		}
		defer sess.Close()
		opts.Session = sess
	}

	result, err := svc.Verify(ctx, opts)
	if err != nil {
		return fail(spinner, err)
	}

	if !result.Verified {
		spinner.FinalMSG = ui.MarkWarn.String() + " " + ui.ID.Sprint(args[0]) + " is " + ui.Verification(false) + " in the registry"
		return nil
	}

	msg := fmt.Sprintf("%s %s is %s\n  file:     %s\n  owner:    %s\n",
		ui.MarkDone.String(), ui.ID.Sprint(args[0]), ui.Verification(true), ui.Path.Sprint(result.FileName), ui.Highlight.Sprint(result.Owner))
	if result.Recipient != "" {
		msg += fmt.Sprintf("  shared:   %s\n", ui.Highlight.Sprint(result.Recipient))
	}
	msg += fmt.Sprintf("  recorded: %s\n  digest:   %s", result.RecordedAt.Format("2006-01-02 15:04:05"), ui.ID.Sprint(result.Digest))
	if result.ContentChecked {
		msg += "\n" + ui.MarkDone.String() + " Content matches the recorded digest"
	}
	spinner.FinalMSG = msg
	return nil
}
