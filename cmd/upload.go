package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/utils"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

var uploadName string

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "file name to record when reading from stdin")
}

// resetUploadCommandState resets the upload command's global state for testing.
func resetUploadCommandState() {
	uploadName = ""
}

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Encrypt and upload files for yourself",
	Long: `Encrypts each file under a fresh content key, wraps that key with your
derived public key, and publishes the encrypted file and its record.

Arguments may be paths, directories or glob patterns (** is supported).
Use - to read a single file from stdin; --name is then required.

Examples:
  securechain upload report.pdf
  securechain upload "docs/**/*.pdf"
  cat notes.txt | securechain upload - --name notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

type uploadInput struct {
	name    string
	content []byte
}

func runUpload(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting upload command")
	ctx := cmd.Context()

	inputs, err := readUploadInputs(args)
	if err != nil {
		return Logger.ErrorfAndReturn("%v", err)
	}
	Logger.Debugf("Resolved %d file(s) to upload", len(inputs))

	w, err := openWallet()
	spinner, cleanup := startSpinner("Uploading...", verbose)
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

	var lines []string
	for _, in := range inputs {
		Logger.Infof("Uploading %s", in.name)
		result, err := svc.Upload(ctx, workflows.UploadOptions{
			Session:  sess,
			FileName: in.name,
			Content:  in.content,
		})
		if err != nil {
			if len(lines) > 0 {
				fmt.Println(strings.Join(lines, "\n"))
			}
			return fail(spinner, fmt.Errorf("%s: %w", in.name, err))
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", ui.ID.Sprint(result.DocumentID), ui.Path.Sprint(result.Document.FileName)))
	}

	noun := "file"
	if len(inputs) != 1 {
		noun = "files"
	}
	spinner.FinalMSG = fmt.Sprintf("%s Uploaded %d %s\n%s", ui.MarkDone.String(), len(inputs), noun, strings.Join(lines, "\n"))
	return nil
}

// readUploadInputs loads every file named by args, or stdin for "-".
func readUploadInputs(args []string) ([]uploadInput, error) {
	if len(args) == 1 && args[0] == "-" {
		if uploadName == "" {
			return nil, fmt.Errorf("--name is required when reading from stdin")
		}
		content, err := utils.ReadStdin()
		if err != nil {
			return nil, err
		}
		return []uploadInput{{name: uploadName, content: content}}, nil
	}
	for _, a := range args {
		if a == "-" {
			return nil, fmt.Errorf("- cannot be combined with other files")
		}
	}
	if uploadName != "" && len(args) > 1 {
		return nil, fmt.Errorf("--name can only be used with a single file")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	paths, err := utils.ResolveFiles(args, cwd)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Matched files:%s", ui.FileList(paths))
	if uploadName != "" && len(paths) > 1 {
		return nil, fmt.Errorf("--name can only be used with a single file")
	}

	inputs := make([]uploadInput, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		name := p
		if uploadName != "" {
			name = uploadName
		}
		inputs = append(inputs, uploadInput{name: name, content: content})
	}
	return inputs, nil
}
