package main

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday-ingest/internal/platform/migration"
	"github.com/spf13/cobra"
)

func getMigrateCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manages the database schema",
		Long: `Manages the database schema with the SQL files under db/migrations.

Without --dir the directory is looked up in: ` + strings.Join(migration.DefaultDirs, ", "),
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory")

	withRunner := func(fn func(*migration.Runner) error) error {
		if opts.dryRun {
			return fmt.Errorf("migrate does not support --dry-run")
		}
		resolved, err := migration.ResolveDir(append([]string{dir}, migration.DefaultDirs...)...)
		if err != nil {
			return err
		}
		runner, err := migration.Open(resolved, opts.cfg.DBURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := runner.Close(); err != nil {
				opts.logger.Warn("close migrator", "error", err)
			}
		}()
		opts.logger.Info("migration source", "source", runner.SourceURL())
		return fn(runner)
	}

	reportChange := func(cmd *cobra.Command, action string, changed bool) {
		if changed {
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: applied\n", action)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: no change\n", action)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Applies all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migration.Runner) error {
				changed, err := r.Up()
				if err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				reportChange(cmd, "up", changed)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [N]",
		Short: "Rolls back N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := migration.ParseSteps(args)
			if err != nil {
				return err
			}
			return withRunner(func(r *migration.Runner) error {
				changed, err := r.Down(steps)
				if err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				reportChange(cmd, "down", changed)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrates up or down to an exact version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := migration.ParseTarget(args[0])
			if err != nil {
				return err
			}
			return withRunner(func(r *migration.Runner) error {
				changed, err := r.Goto(target)
				if err != nil {
					return fmt.Errorf("migrate goto %d: %w", target, err)
				}
				reportChange(cmd, fmt.Sprintf("goto %d", target), changed)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Sets the recorded version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := migration.ParseVersion(args[0])
			if err != nil {
				return err
			}
			return withRunner(func(r *migration.Runner) error {
				if err := r.Force(version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrate force: version set to %d\n", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Prints the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migration.Runner) error {
				version, dirty, ok, err := r.Version()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no migration applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}
