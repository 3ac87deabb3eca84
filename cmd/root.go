package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/config"
	"invoicer/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - invoices for a cement depot from the command line",
	Long: `Invoicer composes customer orders, turns them into numbered invoices and
shares them over WhatsApp, Telegram, PDF, PNG or a Google Sheet register.

An order is built up in a draft, either field by field with "invoicer draft"
or from a free-text message, voice note or photo with "invoicer parse".
"invoicer invoice create" freezes the draft into an invoice that is kept in
the local history.

Configuration is read from defaults, an optional --config file, the
environment (a .env file in the working directory is loaded first) and
command-line flags, in increasing order of precedence.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appConfig = cfg

		log := logger.WithComponent("cmd")
		log.Debug().
			Str("command", cmd.CommandPath()).
			Str("store_backend", cfg.StoreBackend).
			Str("store_path", cfg.StorePath).
			Msg("Configuration loaded")
		return nil
	},
}

// appConfig is set by the root PersistentPreRunE before any command runs.
var appConfig *config.Config

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Debug().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("store-backend", "", "Invoice storage backend: file or sqlite")
	rootCmd.PersistentFlags().String("store-path", "", "Directory holding the invoice history")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of text")
}
