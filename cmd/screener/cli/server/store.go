package server

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/mwantia/screener/pkg/db/migrations"
	"github.com/mwantia/screener/pkg/db/store"
	"github.com/spf13/cobra"

	config "github.com/mwantia/screener/internal/config/server"
)

func NewStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the saved-query database",
		Long:  "Inspect and migrate the SQLite database holding the saved queries.",
	}

	cmd.AddCommand(newStoreStatusCommand())
	cmd.AddCommand(newStoreMigrateCommand())
	cmd.AddCommand(newStoreRollbackCommand())

	return cmd
}

func withMigrator(ctx context.Context, fn func(*migrations.Migrator) error) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}
	if t := cfg.Metadata.StoreType(); t != "sqlite" {
		return fmt.Errorf("store type '%s' has no schema to manage", t)
	}

	sqliteStore, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Metadata.SQLite.Path})
	if err != nil {
		return err
	}
	defer sqliteStore.Close()

	if err := sqliteStore.Connect(ctx); err != nil {
		return err
	}
	return fn(migrations.NewMigrator(sqliteStore.DB()))
}

func newStoreStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tDESCRIPTION\tAPPLIED")
				for _, status := range statuses {
					fmt.Fprintf(w, "%d\t%s\t%t\n", status.Version, status.Description, status.Applied)
				}
				return w.Flush()
			})
		},
	}
}

func newStoreMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
				if err := m.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func newStoreRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
				status, err := m.Rollback(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back migration %d (%s)\n", status.Version, status.Description)
				return nil
			})
		},
	}
}
