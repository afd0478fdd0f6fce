// Package rebuild regenerates the asset tree from the extension, category
// and content tables.
//
// The passes run in a fixed order because each one attaches nodes under
// assets created by the previous one: extensions go under the root,
// categories under their extension or parent category, content items under
// their category.
package rebuild

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/internal/tree"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Stats counts what one pass did.
type Stats struct {
	Seen     int // Source rows visited.
	Created  int // Assets inserted.
	Updated  int // Existing assets rewritten.
	Skipped  int // Rows that already had an asset and were left alone.
	Detached int // Assets stored without a parent.
}

// Summary holds the stats of a full rebuild.
type Summary struct {
	Extensions Stats
	Categories Stats
	Content    Stats
}

// Builder runs the rebuild passes.
type Builder struct {
	db    *store.Store
	tree  *tree.Table
	log   logrus.FieldLogger

	// Set on the first rules lookup.
	backupKnown   bool
	backupPresent bool
}

// New returns a Builder that writes through t and reads sources from s.
func New(s *store.Store, t *tree.Table, log logrus.FieldLogger) *Builder {
	return &Builder{db: s, tree: t, log: log}
}

// Run executes the extension, category and content passes in that order.
// The first failing pass stops the run.
func (b *Builder) Run(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.Extensions, err = b.FixExtensions(ctx); err != nil {
		return sum, err
	}
	if sum.Categories, err = b.FixCategories(ctx); err != nil {
		return sum, err
	}
	if sum.Content, err = b.FixContent(ctx); err != nil {
		return sum, err
	}
	return sum, nil
}

// FixExtensions creates one asset under the root for every unprotected
// component that has none yet. Existing extension assets are kept as they
// are.
func (b *Builder) FixExtensions(ctx context.Context) (Stats, error) {
	var st Stats
	log := b.log.WithField("phase", "extensions")

	exts, err := b.db.ListComponents(ctx)
	if err != nil {
		return st, err
	}
	for _, ext := range exts {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Seen++

		_, err := b.tree.LoadByName(ctx, ext.Element)
		if err == nil {
			st.Skipped++
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			return st, err
		}

		rules, err := b.Rules(ctx, ext.Element, types.KindExtension)
		if err != nil {
			return st, err
		}
		n := tree.NewNode(ext.Element, ext.Name, rules)
		attached, err := b.storeNode(ctx, log, n, types.RootAssetID, true)
		if err != nil {
			return st, fmt.Errorf("extension %s: %w", ext.Element, err)
		}
		st.Created++
		if !attached {
			st.Detached++
		}
	}
	log.WithFields(statsFields(st)).Info("extensions fixed")
	return st, nil
}

// FixCategories rebuilds the asset of every category except the implicit
// root, parents first, and writes the asset id back onto the category.
func (b *Builder) FixCategories(ctx context.Context) (Stats, error) {
	var st Stats
	log := b.log.WithField("phase", "categories")

	cats, err := b.db.ListCategories(ctx)
	if err != nil {
		return st, err
	}
	for _, cat := range cats {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Seen++
		name := cat.AssetName()

		n, err := b.tree.LoadByName(ctx, name)
		switch {
		case errors.Is(err, types.ErrNotFound):
			n = tree.NewNode(name, "", "")
			st.Created++
		case err != nil:
			return st, err
		default:
			st.Updated++
		}
		n.Name = name
		n.Title = cat.Title
		if n.Rules, err = b.Rules(ctx, name, types.KindCategory); err != nil {
			return st, err
		}

		parentID, attach, err := b.resolveParent(ctx, log, cat.ParentID, cat.OwningExtension())
		if err != nil {
			return st, err
		}
		attached, err := b.storeNode(ctx, log, n, parentID, attach)
		if err != nil {
			return st, fmt.Errorf("category %d: %w", cat.ID, err)
		}
		if !attached {
			st.Detached++
		}
		if err := b.db.SetCategoryAsset(ctx, cat.ID, n.ID); err != nil {
			return st, err
		}
	}
	log.WithFields(statsFields(st)).Info("categories fixed")
	return st, nil
}

// FixContent creates a fresh asset for every content item and writes the
// asset id back onto the item.
func (b *Builder) FixContent(ctx context.Context) (Stats, error) {
	var st Stats
	log := b.log.WithField("phase", "content")

	items, err := b.db.ListContent(ctx)
	if err != nil {
		return st, err
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Seen++
		name := item.AssetName()

		rules, err := b.Rules(ctx, name, types.KindContent)
		if err != nil {
			return st, err
		}
		n := tree.NewNode(name, item.Title, rules)
		parentID, attach, err := b.resolveParent(ctx, log, item.CatID, types.ContentExtension)
		if err != nil {
			return st, err
		}
		attached, err := b.storeNode(ctx, log, n, parentID, attach)
		if err != nil {
			return st, fmt.Errorf("content %d: %w", item.ID, err)
		}
		st.Created++
		if !attached {
			st.Detached++
		}
		if err := b.db.SetContentAsset(ctx, item.ID, n.ID); err != nil {
			return st, err
		}
	}
	log.WithFields(statsFields(st)).Info("content fixed")
	return st, nil
}
