package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assetfix/internal/backup"
	"github.com/mesh-intelligence/assetfix/internal/rebuild"
	"github.com/mesh-intelligence/assetfix/internal/seed"
	"github.com/mesh-intelligence/assetfix/internal/tree"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

func (a *app) newRunCmd() *cobra.Command {
	var skipVerify bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Back up, reseed and rebuild the asset tree",
		Long: "Run the full repair: back up the asset, category and content tables\n" +
			"(once), reset the asset table from the seed script, rebuild the\n" +
			"extension, category and content assets, then verify the tree.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return runRepair(cmd, s, !skipVerify)
		},
	}
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "do not check the tree after the rebuild")
	return cmd
}

func runRepair(cmd *cobra.Command, s *session, verify bool) error {
	ctx := cmd.Context()

	log := s.phase("backup")
	report, err := backup.NewManager(s.store, log).Backup(ctx, types.RepairedTables...)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	log.WithFields(logrus.Fields{
		"created": len(report.Created),
		"skipped": len(report.Skipped),
	}).Info("backup complete")

	log = s.phase("seed")
	err = seed.NewLoader(s.store, log).Load(ctx, s.cfg.SeedScript)
	switch {
	case errors.Is(err, types.ErrSeedUnreadable):
		log.WithError(err).Warn("seed script skipped, existing assets are kept and a content asset that already exists fails the run")
	case err != nil:
		return fmt.Errorf("seed: %w", err)
	}

	tbl := tree.New(s.store, s.phase("tree"))
	sum, err := rebuild.New(s.store, tbl, s.log).Run(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	if verify {
		if err := checkTree(cmd, s, tbl); err != nil {
			return err
		}
	}

	s.phase("done").WithFields(logrus.Fields{
		"extensions": sum.Extensions.Created,
		"categories": sum.Categories.Created,
		"updated":    sum.Categories.Updated,
		"content":    sum.Content.Created,
		"detached":   sum.Extensions.Detached + sum.Categories.Detached + sum.Content.Detached,
	}).Info("asset tree rebuilt")
	return nil
}
