package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sigtui/cmd/sigtui/chat"
	"sigtui/internal/config"
	"sigtui/internal/logging"
)

// Version is stamped by the build.
var Version = "dev"

var (
	// Global flags
	verbose    bool
	account    string
	signalCLI  string
	configPath string

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sigtui",
	Short: "sigtui - a terminal client for Signal via signal-cli",
	Long: `sigtui is a terminal Signal client. It supervises a signal-cli daemon
in jsonRpc mode and renders conversations in an interactive TUI.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it owns the terminal)
		if cmd.Use == "sigtui" && cmd.CalledAs() == "sigtui" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sigtui version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sigtui %s\n", Version)
	},
}

// checkCmd validates the configuration without starting the TUI
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and daemon command",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Info("configuration valid",
			zap.String("account", cfg.Account),
			zap.String("signal_cli", cfg.SignalCLI),
			zap.Strings("daemon_args", cfg.DaemonArgs()),
		)
		fmt.Println("configuration ok")
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if account != "" {
		os.Setenv("SIGTUI_ACCOUNT", account)
	}
	if signalCLI != "" {
		os.Setenv("SIGTUI_SIGNAL_CLI", signalCLI)
	}
	return config.Load(path)
}

func runInteractiveChat() error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	// Flags may supply values the file lacks; route them through the env
	// override path so Load still validates the merged result.
	if account != "" {
		os.Setenv("SIGTUI_ACCOUNT", account)
	}
	if signalCLI != "" {
		os.Setenv("SIGTUI_SIGNAL_CLI", signalCLI)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := logging.Initialize(config.StateDir(), path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.CloseAll()
	logging.Get(logging.CategoryBoot).Info("sigtui %s account=%s daemon=%s", Version, cfg.Account, cfg.SignalCLI)

	return chat.Run(cfg)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "signal account (E.164 phone number)")
	rootCmd.PersistentFlags().StringVar(&signalCLI, "signal-cli", "", "path to the signal-cli executable")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/sigtui/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
