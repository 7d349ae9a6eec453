package main

import (
	"context"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "securechain",
	Short: "SecureChain - wallet-keyed encrypted document sharing.",
	Long: `SecureChain encrypts documents with a keypair derived from your wallet
signature, stores them by content, and shares them with other addresses
without ever moving a private key.

Features:
  - Upload files encrypted for yourself
  - Share copies encrypted for another address
  - Verify that a document is recorded in the registry

Usage:
  securechain <command> [flags]

Run 'securechain help <command>' for more details on a specific command.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(c *cobra.Command, args []string) {
		figure.NewColorFigure("SecureChain", "alligator2", "green", true).Print()
		fmt.Println()
		fmt.Println("Run 'securechain --help' to see available commands.")
	},
}

func main() {
	cmd.Register(rootCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
