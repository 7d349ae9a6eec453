package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akhil-is-watching/securechain/internal/configs"
	logger "github.com/akhil-is-watching/securechain/internal/logging"
)

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger
)

// Commands lists the top-level securechain commands.
func Commands() []*cobra.Command {
	return []*cobra.Command{keysCmd, registerCmd, uploadCmd, downloadCmd, shareCmd, verifyCmd, listCmd, logCmd, catalogCmd}
}

// Register attaches the global flags and every command to root.
func Register(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/securechain/config.toml)")
	root.PersistentPreRunE = setup
	root.AddCommand(Commands()...)
}

// setup builds the logger and loads the user config before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)

	path := configPath
	if path == "" {
		path = configs.UserSettings.ConfigPath
	}
	path, err := configs.ExpandPath(path)
	if err != nil {
		return Logger.ErrorfAndReturn("failed to resolve config path: %v", err)
	}

	Logger.Debugf("Loading config from %s", path)
	config, err := configs.LoadConfig(path)
	if err != nil {
		return Logger.ErrorfAndReturn("%v", err)
	}
	if err := configs.UserSettings.Apply(config); err != nil {
		return Logger.ErrorfAndReturn("failed to resolve data directory: %v", err)
	}
	configs.GlobalConfig = config
	Logger.Debugf("Data directory: %s", configs.UserSettings.DataDir)
	return nil
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	resetUploadCommandState()
	resetDownloadCommandState()
	resetShareCommandState()
	resetVerifyCommandState()
	resetListCommandState()
	resetLogCommandState()
	resetCatalogCommandState()
	for _, c := range Commands() {
		resetCobraFlagState(c)
	}
}

// resetCobraFlagState clears Changed on every flag to prevent test pollution.
func resetCobraFlagState(c *cobra.Command) {
	c.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
