package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assetfix/internal/backup"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

func (a *app) newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create the _backup tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := backup.NewManager(s.store, s.phase("backup")).Backup(cmd.Context(), types.RepairedTables...)
			if err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, t := range report.Created {
				fmt.Fprintf(out, "created %s (%d rows)\n", s.store.Table(t), report.Rows[t])
			}
			for _, t := range report.Skipped {
				fmt.Fprintf(out, "kept %s\n", s.store.Table(t))
			}
			return nil
		},
	}
}

func (a *app) newRestoreCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the live tables with the contents of their backups",
		Long: "Restore deletes every row of the asset, category and content tables\n" +
			"and copies the rows of the matching _backup tables back in. The backup\n" +
			"tables are kept.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("restore overwrites live tables; pass --yes to confirm")
			}
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := backup.NewManager(s.store, s.phase("restore")).Restore(cmd.Context(), types.RepairedTables...); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tables restored from backup")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm overwriting the live tables")
	return cmd
}
