package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/ui"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect the keypair derived from your wallet",
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your address and derived public key",
	Long: `Signs in with your wallet and prints the address, the public key
derived from the login signature, and whether that key is registered.

The private key never leaves memory and is never printed.

Examples:
  securechain keys show
  SECURECHAIN_WALLET_KEY=<hex> securechain keys show`,
	Args: cobra.NoArgs,
	RunE: runKeysShow,
}

func init() {
	keysCmd.AddCommand(keysShowCmd)
}

func runKeysShow(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting keys show command")
	ctx := cmd.Context()

	w, err := openWallet()
	spinner, cleanup := startSpinner("Deriving keypair...", verbose)
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

	pub := sess.PublicKeyHex()

	bound, err := svc.LookupPublicKey(ctx, sess.Address())
	if err != nil {
		Logger.Debugf("Registry lookup: %v", err)
	}
	status := ui.Registration(err == nil, err == nil && secrets.SamePublicKey(bound, pub))

	spinner.FinalMSG = fmt.Sprintf("%s Signed in\n  address:    %s\n  public key: %s\n  registry:   %s",
		ui.MarkDone.String(), ui.Highlight.Sprint(sess.Address()), ui.ID.Sprint(pub), status)
	return nil
}
