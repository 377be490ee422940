// Package root contains the root command for the application
package root

import (
	"mbh/ledger-sync/internal/config"
	"mbh/ledger-sync/internal/logging"

	"github.com/spf13/cobra"
)

// GlobalFlags are accepted by every command
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Config is the loaded configuration, set before any subcommand runs
	Config *config.Config

	// Flags holds the persistent flag values
	Flags = GlobalFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-sync",
		Short: "Sync purchase and payment ledgers into per-firm spreadsheet tabs.",
		Long: `ledger-sync reads purchase and payment ledgers (Excel or CSV), normalizes
counterparty names and appends every row to that firm's tab of the shared
spreadsheet, keeping each tab's balance formula current. It also answers
firm, balance and monthly statement lookups, on the command line or through
a WhatsApp webhook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
	}
)

// Init registers the persistent flags
func Init() {
	Cmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", "", "Config file (default: config.yaml in ., .ledger-sync or $HOME/.ledger-sync)")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&Flags.LogFormat, "log-format", "", "Log format (text, json)")
}

// Setup loads the configuration, applies flag overrides and configures the
// shared logger.
func Setup() error {
	cfg, err := config.InitializeConfig(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = Flags.LogLevel
	}
	if Flags.LogFormat != "" {
		cfg.Log.Format = Flags.LogFormat
	}
	Config = cfg
	Log = config.ConfigureLoggingFromConfig(cfg)
	return nil
}
