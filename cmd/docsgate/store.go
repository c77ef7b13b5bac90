package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog"
	"github.com/sagarc03/docsgate/config"
	"github.com/sagarc03/docsgate/filesystem"
	"github.com/sagarc03/docsgate/s3"
)

// openStore builds the configured backend. The returned cleanup function
// releases its resources.
func openStore(ctx context.Context, cfg config.StoreConfig) (docsgate.ObjectStore, func(), error) {
	switch cfg.Backend {
	case config.BackendS3:
		store, err := s3.NewStore(ctx, cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 store: %w", err)
		}
		slog.Info("using s3 store", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint, "prefix", cfg.S3.Prefix)
		return store, func() {}, nil

	case config.BackendCatalog:
		root, err := openRoot(cfg.Path)
		if err != nil {
			return nil, nil, err
		}

		repo, closeDB, err := catalog.Connect(ctx, cfg.Catalog)
		if err != nil {
			_ = root.Close()
			return nil, nil, fmt.Errorf("connect catalog: %w", err)
		}
		slog.Info("using catalog store", "path", cfg.Path, "type", cfg.Catalog.Type)

		store := catalog.NewStore(repo, filesystem.NewFileStorage(root))
		return store, func() {
			closeDB()
			_ = root.Close()
		}, nil

	default:
		root, err := openRoot(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using filesystem store", "path", cfg.Path)

		return filesystem.NewFileStorage(root), func() { _ = root.Close() }, nil
	}
}

func openRoot(path string) (*os.Root, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site directory: %s is not a directory", path)
	}

	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, fmt.Errorf("open site root: %w", err)
	}
	return root, nil
}
