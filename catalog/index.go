package catalog

import (
	"context"
	"fmt"

	"github.com/sagarc03/docsgate"
)

// Walker lists every object below a root.
type Walker interface {
	Walk(ctx context.Context) ([]docsgate.ObjectEntry, error)
}

// IndexResult summarizes an Index run.
type IndexResult struct {
	Created int `json:"created" yaml:"created"`
	Updated int `json:"updated" yaml:"updated"`
	Removed int `json:"removed" yaml:"removed"`
}

// Index synchronizes catalog rows with the files reported by walker.
// Every file is upserted and rows without a file are removed.
//
// Index is not atomic. If it fails partway through, some rows may already
// have been written; running it again converges.
func Index(ctx context.Context, repo Repo, walker Walker) (IndexResult, error) {
	var result IndexResult

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("index: %w", err)
	}

	files, err := walker.Walk(ctx)
	if err != nil {
		return result, fmt.Errorf("index: %w", err)
	}

	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		created, err := repo.Upsert(ctx, file)
		if err != nil {
			return result, fmt.Errorf("index '%s': %w", file.Path, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		seen[file.Path] = struct{}{}
	}

	paths, err := repo.Paths(ctx)
	if err != nil {
		return result, fmt.Errorf("index: %w", err)
	}

	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		if err := repo.Delete(ctx, p); err != nil {
			return result, fmt.Errorf("index remove '%s': %w", p, err)
		}
		result.Removed++
	}

	return result, nil
}
