package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog"
	"github.com/sagarc03/docsgate/config"
	"github.com/sagarc03/docsgate/filesystem"
	"github.com/sagarc03/docsgate/report"
)

var indexOutput string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Synchronize the catalog with the site directory",
	Long: `Walk the site directory and upsert one catalog row per file. Rows
whose file no longer exists are removed. Run this after every publish
when serving with the catalog backend.

Examples:
  docsgate index --store-path ./site
  docsgate index --output json`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", report.OutputHuman, "output format: human, json, yaml")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	formatter, err := report.NewFormatter(indexOutput)
	if err != nil {
		return err
	}

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if cfg.Store.Backend != config.BackendCatalog {
		return fmt.Errorf("%w: index requires store.backend %q, got %q", docsgate.ErrInvalidInput, config.BackendCatalog, cfg.Store.Backend)
	}

	root, err := openRoot(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	repo, closeDB, err := catalog.Connect(ctx, cfg.Store.Catalog)
	if err != nil {
		return fmt.Errorf("connect catalog: %w", err)
	}
	defer closeDB()

	slog.Info("scanning site directory", "path", cfg.Store.Path)

	result, err := catalog.Index(ctx, repo, filesystem.NewFileStorage(root))
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return fmt.Errorf("index: %w", err)
	}

	slog.Info("index complete", "created", result.Created, "updated", result.Updated, "removed", result.Removed)

	return formatter.FormatIndex(os.Stdout, result)
}
