package main

import (
	"fmt"
	"os"

	"github.com/Harshitk-cp/patron/internal/config"
	"github.com/Harshitk-cp/patron/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var (
		dir  string
		down bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or roll back the latest with --down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = config.MigrationsPath()
			}

			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			out := cmd.OutOrStdout()

			if down {
				version, err := store.Rollback(cmd.Context(), pool, os.DirFS(dir))
				if err != nil {
					return err
				}
				if version == "" {
					fmt.Fprintln(out, "no migrations to roll back")
					return nil
				}
				fmt.Fprintf(out, "rolled back %s\n", version)
				return nil
			}

			applied, err := store.Migrate(cmd.Context(), pool, os.DirFS(dir))
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "applied %s\n", v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default $MIGRATIONS_PATH or ./migrations)")
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recently applied migration")
	return cmd
}
