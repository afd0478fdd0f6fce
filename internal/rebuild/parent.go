package rebuild

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/assetfix/internal/tree"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// ResolveParent maps a category or content parent reference to the asset
// the node goes under. A zero reference means no parent. A reference of
// one means the asset of the owning extension. Any other reference is a
// category id, matched to an asset by title.
//
// attach is false when the node must be stored detached, including when the
// parent asset cannot be found; that case is logged, not returned.
func (b *Builder) ResolveParent(ctx context.Context, ref int64, extension string) (parentID int64, attach bool, err error) {
	return b.resolveParent(ctx, b.log, ref, extension)
}

func (b *Builder) resolveParent(ctx context.Context, log logrus.FieldLogger, ref int64, extension string) (parentID int64, attach bool, err error) {
	switch {
	case ref <= types.ParentNone:
		return 0, false, nil

	case ref == types.ParentExtensionRoot:
		n, err := b.tree.LoadByName(ctx, extension)
		if errors.Is(err, types.ErrNotFound) {
			log.WithFields(logrus.Fields{
				"extension": extension,
			}).Warn("extension asset missing, storing node detached")
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		return n.ID, true, nil
	}

	// Categories carry no reliable link to their asset at this point, so the
	// parent asset is found through the category title. Two categories
	// sharing a title resolve to the lowest matching asset id.
	var id sql.NullInt64
	err = b.db.DB().NewRaw(
		"SELECT a.id FROM ? AS c LEFT JOIN ? AS a ON a.title = c.title WHERE c.id = ? ORDER BY a.id LIMIT 1",
		b.db.Ident(types.CategoriesTable), b.db.Ident(types.AssetsTable), ref,
	).Scan(ctx, &id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("resolve parent category %d: %w", ref, err)
	}
	if !id.Valid {
		log.WithField("category", ref).Warn("parent category asset not found, storing node detached")
		return 0, false, nil
	}
	return id.Int64, true, nil
}

// Rules returns the rules payload saved in the asset backup for name, or
// the default payload of kind when the backup has none.
func (b *Builder) Rules(ctx context.Context, name string, kind types.AssetKind) (string, error) {
	if !b.backupKnown {
		ok, err := b.db.TableExists(ctx, types.BackupTableName(types.AssetsTable))
		if err != nil {
			return "", err
		}
		b.backupKnown, b.backupPresent = true, ok
	}
	if !b.backupPresent {
		return types.DefaultRules(kind), nil
	}

	var rules sql.NullString
	err := b.db.DB().NewRaw(
		"SELECT rules FROM ? WHERE name = ? LIMIT 1",
		b.db.Ident(types.BackupTableName(types.AssetsTable)), name,
	).Scan(ctx, &rules)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !rules.Valid) {
		return types.DefaultRules(kind), nil
	}
	if err != nil {
		return "", fmt.Errorf("backup rules for %s: %w", name, err)
	}
	return rules.String, nil
}

// storeNode stores n under parentID when attach is set. A parent the tree
// refuses is logged and n is stored without a location instead. It reports
// whether n ended up attached.
func (b *Builder) storeNode(ctx context.Context, log logrus.FieldLogger, n *tree.Node, parentID int64, attach bool) (bool, error) {
	if attach {
		n.SetLocation(parentID, tree.LastChild)
	} else {
		n.ClearLocation()
	}

	err := b.tree.Store(ctx, n)
	if err == nil {
		return !n.Detached(), nil
	}
	if !errors.Is(err, types.ErrParentNotFound) &&
		!errors.Is(err, types.ErrParentDetached) &&
		!errors.Is(err, types.ErrInvalidMove) {
		return false, err
	}

	log.WithFields(logrus.Fields{
		"asset":  n.Name,
		"parent": parentID,
	}).WithError(err).Warn("parent rejected, storing node without location")
	n.ClearLocation()
	if err := b.tree.Store(ctx, n); err != nil {
		return false, err
	}
	return !n.Detached(), nil
}

func statsFields(st Stats) logrus.Fields {
	return logrus.Fields{
		"seen":     st.Seen,
		"created":  st.Created,
		"updated":  st.Updated,
		"skipped":  st.Skipped,
		"detached": st.Detached,
	}
}
