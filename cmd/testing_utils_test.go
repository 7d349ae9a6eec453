package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/configs"
	logger "github.com/akhil-is-watching/securechain/internal/logging"
	"github.com/akhil-is-watching/securechain/internal/wallet"
)

const (
	keyA  = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	addrA = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	keyB  = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
)

var (
	addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	locatorPattern = regexp.MustCompile(`bafkrei[a-z2-7]+`)
	originalCwd, _ = os.Getwd()
)

// setupTestEnvironment points the user settings at a temporary config and data
// directory, selects the wallet key and changes into a scratch working directory.
func setupTestEnvironment(t *testing.T, walletKey string) string {
	t.Helper()
	root := t.TempDir()
	work := filepath.Join(root, "work")
	if err := os.MkdirAll(work, 0700); err != nil {
		t.Fatalf("Failed to create work directory: %v", err)
	}

	original := configs.UserSettings
	configs.UserSettings = &configs.Settings{
		ConfigPath: filepath.Join(root, "config", "config.toml"),
		DataDir:    filepath.Join(root, "data"),
	}

	config := configs.DefaultConfig()
	config.Cipher = configs.CipherConfig{Time: 1, MemoryKiB: 64, Threads: 1}
	if err := configs.SaveConfig(configs.UserSettings.ConfigPath, config); err != nil {
		t.Fatalf("Failed to save test config: %v", err)
	}

	t.Setenv(wallet.KeyEnv, walletKey)
	t.Setenv("NO_COLOR", "1")

	if err := os.Chdir(work); err != nil {
		t.Fatalf("Failed to change to work directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalCwd); err != nil {
			t.Errorf("Failed to change to original directory: %v", err)
		}
		configs.UserSettings = original
		configs.GlobalConfig = nil
		ResetGlobalState()
	})
	return work
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to copy stdout: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to copy stderr: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// createTestCLI creates a fresh root command wired with every securechain
// command and the given arguments.
func createTestCLI(args ...string) *cobra.Command {
	ResetGlobalState()
	Logger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:           "securechain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	Register(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes the CLI with args and returns the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}

// mustRunCLI is runCLI that fails the test on a returned error.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("securechain %v failed: %v\nOutput: %s", args, err, out)
	}
	return out
}

// writeTestFile writes content to name in the current directory.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return name
}

// firstLocator returns the first document id in output.
func firstLocator(t *testing.T, output string) string {
	t.Helper()
	id := locatorPattern.FindString(output)
	if id == "" {
		t.Fatalf("No document id in output: %s", output)
	}
	return id
}
