package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/utils"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var (
	downloadOutput string
	downloadForce  bool
)

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "where to write the file (- for stdout, default is the recorded name)")
	downloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "overwrite an existing file")
}

// resetDownloadCommandState resets the download command's global state for testing.
func resetDownloadCommandState() {
	downloadOutput = ""
	downloadForce = false
}

var downloadCmd = &cobra.Command{
	Use:   "download <document-id>",
	Short: "Download and decrypt a document",
	Long: `Fetches a document record and decrypts its file with the key implied by
your role: your own uploads are unwrapped with your private key, shares are
opened with the key shared between owner and recipient.

Examples:
  securechain download bafkrei...
  securechain download bafkrei... -o copy.pdf --force
  securechain download bafkrei... -o - > copy.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting download command")
	ctx := cmd.Context()
	toStdout := downloadOutput == "-"

	w, err := openWallet()
	spinner, cleanup := startSpinner("Downloading...", verbose || toStdout)
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

	result, err := svc.Download(ctx, workflows.DownloadOptions{Session: sess, DocumentID: args[0]})
	if err != nil {
		return fail(spinner, err)
	}
	Logger.Debugf("Opened %s as %s", args[0], result.Role)

	if toStdout {
		if _, err := os.Stdout.Write(result.Content); err != nil {
			return Logger.ErrorfAndReturn("failed to write to stdout: %v", err)
		}
		return nil
	}

	out := downloadOutput
	if out == "" {
		out = filepath.Base(result.Document.FileName)
	}
	if err := utils.WriteFile(out, result.Content, downloadForce); err != nil {
		return fail(spinner, err)
	}

	spinner.FinalMSG = ui.MarkDone.String() + " Downloaded " + ui.Highlight.Sprint(result.Document.FileName) +
		" to " + ui.Path.Sprint(out) + " " + ui.Role(result.Role)
	return nil
}
