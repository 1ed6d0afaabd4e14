package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/cardscan/internal/anomaly"
	"github.com/Veraticus/cardscan/internal/categorize"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/config"
	"github.com/Veraticus/cardscan/internal/document"
	"github.com/Veraticus/cardscan/internal/engine"
	"github.com/Veraticus/cardscan/internal/storage"
)

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// buildRegistry loads the category table and replays stored custom rules onto it.
func buildRegistry(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage) (*categorize.Registry, error) {
	registry := categorize.DefaultRegistry()
	if cfg.Categories.File != "" {
		f, err := os.Open(cfg.Categories.File)
		if err != nil {
			return nil, common.NewUserError("Could not open the category file", err)
		}
		defer func() { _ = f.Close() }()

		registry, err = categorize.LoadYAML(f)
		if err != nil {
			return nil, common.NewUserError("The category file is invalid", err)
		}
	}

	if store == nil {
		return registry, nil
	}

	rules, err := store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom rules: %w", err)
	}
	for _, rule := range rules {
		if err := registry.AddRule(rule); err != nil {
			common.LogWarn(err, "Skipping stored rule", common.Fields{"id": rule.ID, "pattern": rule.Pattern})
		}
	}
	return registry, nil
}

// buildPipeline wires the analysis pipeline from configuration.
func buildPipeline(cfg *config.Config, registry *categorize.Registry) *engine.Pipeline {
	var opts []categorize.Option
	if cfg.Categories.EnableNLP {
		opts = append(opts, categorize.WithEntityExtractor(categorize.ProseExtractor{}))
	}

	return engine.NewDefault(registry, anomaly.Config{
		MinTransactions:   cfg.Anomaly.MinTransactions,
		MLMinTransactions: cfg.Anomaly.MLMinTransactions,
		Contamination:     cfg.Anomaly.Contamination,
		Trees:             cfg.Anomaly.Trees,
	}, opts...)
}

// expandInputs resolves arguments to statement files. Directories are
// walked for supported files; explicit files are passed through unchanged
// so the loader can report unsupported types.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("Cannot read %s", arg), err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && document.Supported(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
		sort.Strings(found)
		slog.Debug("Expanded directory", "dir", arg, "files", len(found))
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No statement files found", common.ErrNoTransactions)
	}
	return files, nil
}
