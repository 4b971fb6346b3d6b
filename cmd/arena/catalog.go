package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"basegraph.app/arena/core/db"
	"basegraph.app/arena/core/db/sqlc"
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/output"
	"basegraph.app/arena/internal/store"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model profiles debaters can be seated with",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			output.NewPrinter(cmd.OutOrStdout()).Models(rt.catalog.ProfilesMeta())
			return nil
		},
	}
}

func newPersonasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List persona presets, including the ones stored in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			output.NewPrinter(cmd.OutOrStdout()).Personas(rt.catalog.PresetsMeta())
			return nil
		},
	}
	cmd.AddCommand(newPersonasSyncCmd())
	cmd.AddCommand(newPersonasDisableCmd())
	return cmd
}

func newPersonasSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upsert the presets of a YAML catalogue into Postgres",
		RunE:  runPersonasSync,
	}
	cmd.Flags().String("file", "", "YAML file with a presets list (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runPersonasSync(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	database, err := requireDB(rt)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	src, err := catalog.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	metas := src.PresetsMeta()
	if len(metas) == 0 {
		return fmt.Errorf("%s: no presets to sync", path)
	}

	// All or nothing: a bad preset leaves the stored table untouched.
	err = database.WithTx(ctx, func(q *sqlc.Queries) error {
		presets := store.NewPersonaPresetStore(q)
		for _, meta := range metas {
			preset, _ := src.Preset(meta.ID)
			if err := presets.Upsert(ctx, &preset); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("syncing presets: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %d persona presets\n", len(metas))
	return nil
}

func newPersonasDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Hide a stored persona preset from new debates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			database, err := requireDB(rt)
			if err != nil {
				return err
			}

			err = store.NewPersonaPresetStore(database.Queries()).Disable(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no stored persona preset %q", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "disabled persona preset %s\n", args[0])
			return nil
		},
	}
}

func requireDB(rt *runtime) (*db.DB, error) {
	if rt.db == nil {
		return nil, fmt.Errorf("DATABASE_URL is required to manage stored persona presets")
	}
	return rt.db, nil
}
