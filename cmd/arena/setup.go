package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"basegraph.app/arena/common/id"
	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/core/config"
	"basegraph.app/arena/core/db"
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/store"
)

type runtime struct {
	cfg     config.Config
	catalog *catalog.Catalog
	db      *db.DB // nil without DATABASE_URL
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// setup loads config and the catalogue. Logs go to stderr so stdout carries
// only the transcript. Stored presets are overlaid when a database is configured.
func setup(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.SetupWriter(cfg, cmd.ErrOrStderr())

	if err := id.Init(3); err != nil {
		return nil, fmt.Errorf("initializing id generator: %w", err)
	}

	path := cfg.Catalog.File
	if flag, _ := cmd.Root().PersistentFlags().GetString("catalog"); flag != "" {
		path = flag
	}

	cat, err := catalog.Load(path,
		catalog.WithCompleterPolicy(cfg.Debate.LLMTimeout, cfg.Debate.LLMRetries, time.Second))
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, catalog: cat}
	if !cfg.DB.Enabled() {
		return rt, nil
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	rt.db = database

	rt.catalog, err = cat.Overlay(ctx, store.NewPersonaPresetStore(database.Queries()))
	if err != nil {
		database.Close()
		return nil, err
	}
	slog.DebugContext(ctx, "stored persona presets loaded", "presets", len(rt.catalog.PresetsMeta()))
	return rt, nil
}
