package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assetfix/internal/tree"
)

func (a *app) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the nested-set integrity of the asset tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return checkTree(cmd, s, tree.New(s.store, s.phase("verify")))
		},
	}
}

// checkTree runs the integrity check and prints one line per issue.
func checkTree(cmd *cobra.Command, s *session, tbl *tree.Table) error {
	report, err := tbl.Check(cmd.Context())
	out := cmd.OutOrStdout()
	for _, issue := range report.Issues {
		fmt.Fprintf(out, "issue: %s\n", issue)
	}
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	s.phase("verify").WithField("attached", report.Attached).
		WithField("detached", report.Detached).
		Info("asset tree is consistent")
	return nil
}
