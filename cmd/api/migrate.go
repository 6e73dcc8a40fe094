package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/migrations"
)

// newMigrateCommand creates "migrate", which applies pending migrations,
// and "migrate status", which lists every migration and whether it ran.
func newMigrateCommand(_ *rootOptions) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(logLevel)
			dsn, err := config.LoadDatabaseURL()
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), dsn, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			n, err := migrations.Up(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info("migrations applied", "count", n)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := config.LoadDatabaseURL()
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), dsn, newLogger(logLevel))
			if err != nil {
				return err
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			p, err := migrations.NewProvider(db)
			if err != nil {
				return err
			}
			statuses, err := p.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				fmt.Fprintf(out, "%05d  %-8s  %s\n", s.Source.Version, s.State, s.Source.Path)
			}
			return nil
		},
	})
	return cmd
}
