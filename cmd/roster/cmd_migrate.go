package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/postgres"
)

var migrateFlags struct {
	status   bool
	rollback bool
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, inspect or roll back Postgres migrations",
	Long: `Applies every pending Postgres migration. --status lists migrations with the
time they were applied; --rollback reverts the most recent one. SQLite
stores create their schema on open and need no migration.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateFlags.status, "status", false, "list migrations instead of applying them")
	migrateCmd.Flags().BoolVar(&migrateFlags.rollback, "rollback", false, "revert the last applied migration")
	migrateCmd.MarkFlagsMutuallyExclusive("status", "rollback")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if cfg.Database.URL == "" {
		return errors.New("migrate needs DATABASE_URL")
	}

	b, err := openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	m := postgres.NewMigrator(b.pg)
	out := cmd.OutOrStdout()

	switch {
	case migrateFlags.status:
		status, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
		for _, mig := range status {
			applied := "pending"
			if mig.IsApplied {
				applied = mig.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", mig.Version, mig.Name, applied)
		}
		return tw.Flush()

	case migrateFlags.rollback:
		if err := m.Rollback(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(out, "rolled back the last migration")
		return nil

	default:
		applied, err := m.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migrations\n", applied)
		return nil
	}
}
