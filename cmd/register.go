package cmd

import (
	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Bind your derived public key to your address",
	Long: `Records the public key derived from your wallet signature in the
registry so others can share documents with you by address alone.

Registering the same key twice is a no-op. A different key already bound
to your address is an error.

Examples:
  securechain register`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting register command")
	ctx := cmd.Context()

	w, err := openWallet()
	spinner, cleanup := startSpinner("Registering public key...", verbose)
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

	result, err := svc.RegisterKey(ctx, workflows.RegisterOptions{Session: sess})
	if err != nil {
		return fail(spinner, err)
	}

	if !result.Bound {
		spinner.FinalMSG = ui.MarkDone.String() + " Public key for " + ui.Highlight.Sprint(result.Address) + " is already registered"
		return nil
	}
	spinner.FinalMSG = ui.MarkDone.String() + " Registered public key for " + ui.Highlight.Sprint(result.Address) + "\n" +
		"  " + ui.ID.Sprint(result.PublicKey)
	return nil
}
