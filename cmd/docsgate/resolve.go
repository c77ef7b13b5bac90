package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/config"
	"github.com/sagarc03/docsgate/report"
)

var (
	resolveHost   string
	resolveOutput string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>...",
	Short: "Show how paths would be served",
	Long: `Run the router against the configured store and print the status,
redirect location, storage key, and headers for each path. Bodies are
never read.

Examples:
  docsgate resolve /
  docsgate resolve /latest/guide/ /v1.0/guide/
  docsgate resolve --host docs.example.com --output json /latest/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveHost, "host", "localhost", "host used in redirect URLs")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", report.OutputHuman, "output format: human, json, yaml")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	formatter, err := report.NewFormatter(resolveOutput)
	if err != nil {
		return err
	}

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}
	defer closeStore()

	router := docsgate.NewRouter(store, docsgate.RouterConfig{Scheme: cfg.Server.Scheme})

	results := make([]report.Resolution, 0, len(args))
	failed := 0
	for _, path := range args {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		resp, err := router.Route(ctx, path, resolveHost)
		if err != nil {
			results = append(results, report.FromError(path, err))
			failed++
			continue
		}
		_ = resp.Close()

		results = append(results, report.FromResponse(path, resp))
	}

	if err := formatter.FormatResolve(os.Stdout, results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d path(s) failed to resolve", failed, len(args))
	}
	return nil
}
