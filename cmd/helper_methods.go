package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/catalog"
	"github.com/akhil-is-watching/securechain/internal/configs"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/kv"
	"github.com/akhil-is-watching/securechain/internal/registry"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
	"github.com/akhil-is-watching/securechain/internal/storage"
	"github.com/akhil-is-watching/securechain/internal/ui"
	"github.com/akhil-is-watching/securechain/internal/utils"
	"github.com/akhil-is-watching/securechain/internal/wallet"
	"github.com/akhil-is-watching/securechain/internal/workflows"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines; the cleanup function
// adds one before printing.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// openServices wires the collaborators from the loaded config. The returned
// function closes the embedded databases.
func openServices() (*workflows.Services, func(), error) {
	settings := configs.UserSettings
	config := configs.GlobalConfig

	Logger.Debugf("Opening blob store at %s", settings.BlobsPath())
	store, err := storage.NewFilesystem(settings.BlobsPath())
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				Logger.Warnf("Failed to close database: %v", err)
			}
		}
	}

	Logger.Debugf("Opening registry at %s", settings.RegistryPath())
	registryDB, err := kv.Open(kv.Config{Path: settings.RegistryPath(), Logger: Logger})
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, registryDB.Close)

	var docs workflows.Catalog
	if config.Catalog.URL != "" {
		Logger.Debugf("Using remote catalog at %s", config.Catalog.URL)
		docs = catalog.NewClient(config.Catalog.URL)
	} else {
		Logger.Debugf("Opening catalog at %s", settings.CatalogPath())
		catalogDB, err := kv.Open(kv.Config{Path: settings.CatalogPath(), Logger: Logger})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, catalogDB.Close)
		docs = catalog.NewBadger(catalogDB)
	}

	svc := &workflows.Services{
		Store:    store,
		Registry: registry.NewBadger(registryDB),
		Catalog:  docs,
		Cipher:   secrets.NewCipher(config.Cipher.Params()),
		Logger:   Logger,
		Audit:    audit.Log,
	}
	return svc, closeAll, nil
}

// openWallet picks the wallet: a hex key from the environment first, then the
// configured keystore unlocked with a hidden passphrase prompt.
func openWallet() (workflows.Wallet, error) {
	w, ok, err := wallet.FromEnv()
	if ok {
		if err != nil {
			return nil, err
		}
		Logger.Debugf("Using wallet key from %s", wallet.KeyEnv)
		return w, nil
	}

	path := configs.GlobalConfig.Wallet.Keystore
	if path == "" {
		return nil, fmt.Errorf("%w: set %s or wallet.keystore in %s", kerrors.ErrWalletUnavailable, wallet.KeyEnv, configs.UserSettings.ConfigPath)
	}
	path, err = configs.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
	}

	read := utils.ReadPassphrase
	if !utils.IsTerminal() {
		read = utils.ReadPassphraseFromTTY
	}
	passphrase, err := read("Keystore passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
	}
	defer secrets.Zero(passphrase)

	Logger.Debugf("Unlocking keystore %s", path)
	w, err = wallet.OpenKeystore(path, passphrase)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// signIn derives the session for w. Callers close the session when done.
func signIn(ctx context.Context, svc *workflows.Services, w workflows.Wallet) (*session.Session, error) {
	res, err := svc.SignIn(ctx, workflows.SignInOptions{
		Wallet:  w,
		Message: configs.GlobalConfig.Wallet.LoginMessage,
	})
	if err != nil {
		return nil, err
	}
	Logger.Infof("Signed in as %s", res.Address)
	return res.Session, nil
}

// formatError formats a workflow error for display to the user.
func formatError(err error) string {
	cross := ui.MarkFailed.String()
	arrow := ui.MarkNext.String()

	var stepErr *kerrors.StepError
	switch {
	case errors.Is(err, kerrors.ErrWalletUnavailable):
		return cross + " No wallet available\n" +
			arrow + " Set " + ui.Code.Sprint(wallet.KeyEnv) + " or " + ui.Code.Sprint("wallet.keystore") + " in " + ui.Path.Sprint(configs.UserSettings.ConfigPath) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrKeyDerivation):
		return cross + " Failed to derive your keypair from the wallet signature\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrAccessDenied):
		return cross + " Access denied: you are neither the owner nor the recipient of this document"

	case errors.Is(err, kerrors.ErrUnwrapFailed):
		return cross + " Failed to unwrap the content key. Was this document uploaded by this wallet?"

	case errors.Is(err, kerrors.ErrDecryptFailed):
		return cross + " Failed to decrypt the document"

	case errors.Is(err, kerrors.ErrIntegrityMismatch):
		return cross + " Content does not match the recorded digest"

	case errors.Is(err, kerrors.ErrPublicKeyNotBound):
		return cross + " The recipient has not registered a public key\n" +
			arrow + " Ask them to run " + ui.Code.Sprint("securechain register") + " or pass " + ui.Flag.Sprint("--pubkey")

	case errors.Is(err, kerrors.ErrPublicKeyExists):
		return cross + " A different public key is already registered for this address\n" +
			arrow + " Check " + ui.Code.Sprint("wallet.login_message") + " in your config"

	case errors.Is(err, kerrors.ErrNotFound):
		return cross + " Not found\n" + ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInvalidRecord):
		return cross + " " + err.Error()

	case errors.As(err, &stepErr):
		return cross + " Failed to " + stepErr.Step + "\n" + ui.Error.Sprint("Error: ") + stepErr.Err.Error()

	default:
		return cross + " " + err.Error()
	}
}

// isUnexpectedError reports whether err should cause a non-zero exit beyond
// the message already shown.
func isUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrWalletUnavailable),
		errors.Is(err, kerrors.ErrAccessDenied),
		errors.Is(err, kerrors.ErrNotFound),
		errors.Is(err, kerrors.ErrPublicKeyNotBound),
		errors.Is(err, kerrors.ErrPublicKeyExists),
		errors.Is(err, kerrors.ErrInvalidRecord),
		errors.Is(err, kerrors.ErrInvalidDateFormat),
		errors.Is(err, kerrors.ErrFileExists):
		return false
	default:
		return true
	}
}

// fail shows err through the spinner and decides the exit status.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return err
	}
	return nil
}
