package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assetfix/internal/seed"
)

func (a *app) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Reset the asset table from the seed script",
		Long: "Execute the seed script, which leaves only the root asset. Run\n" +
			"backup first; seed does not take one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := seed.NewLoader(s.store, s.phase("seed")).Load(cmd.Context(), s.cfg.SeedScript); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return nil
		},
	}
}
