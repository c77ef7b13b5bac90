package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/docsgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "docsgate",
	Short:   "Serve versioned documentation from an object store",
	Long: `docsgate serves versioned documentation sites from a bucket.

Requests to / redirect to /latest/, /latest/... redirects to the version
named in latest-version.txt, and every other path is served from the
bucket with index.html appended to directory paths.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = []string{configFile}
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		slog.SetDefault(cfg.Logger(os.Stderr))
		log.SetFlags(0)
		log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo).Writer())

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./docsgate.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "store backend: filesystem, s3, catalog (default: filesystem, env: DOCSGATE_STORE_BACKEND)")
	rootCmd.PersistentFlags().String("store-path", "", "site directory for filesystem and catalog backends (default: ./site, env: DOCSGATE_STORE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: DOCSGATE_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
