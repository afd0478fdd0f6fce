package store

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// ListComponents returns the unprotected component extensions in
// extension_id order, one per element. The first row of a duplicated
// element wins.
func (s *Store) ListComponents(ctx context.Context) ([]types.Extension, error) {
	var rows []ExtensionModel
	err := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS e", s.Ident(types.ExtensionsTable)).
		Where("e.type = ?", types.ComponentType).
		Order("e.extension_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	exts := make([]types.Extension, 0, len(rows))
	for i := range rows {
		ext := rows[i].ToExtension()
		if !ext.Participates() || seen[ext.Element] {
			continue
		}
		seen[ext.Element] = true
		exts = append(exts, ext)
	}
	return exts, nil
}

// ListCategories returns every category except the implicit root, parents
// before children.
func (s *Store) ListCategories(ctx context.Context) ([]types.Category, error) {
	var rows []CategoryModel
	err := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS c", s.Ident(types.CategoriesTable)).
		Where("c.id <> ?", types.RootCategoryID).
		Order("c.level", "c.parent_id", "c.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	cats := make([]types.Category, len(rows))
	for i := range rows {
		cats[i] = rows[i].ToCategory()
	}
	return cats, nil
}

// ListContent returns every content item in id order.
func (s *Store) ListContent(ctx context.Context) ([]types.Content, error) {
	var rows []ContentModel
	err := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS ct", s.Ident(types.ContentTable)).
		Order("ct.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	items := make([]types.Content, len(rows))
	for i := range rows {
		items[i] = rows[i].ToContent()
	}
	return items, nil
}

// SetCategoryAsset writes assetID back onto the category row.
func (s *Store) SetCategoryAsset(ctx context.Context, categoryID, assetID int64) error {
	return s.setAssetID(ctx, types.CategoriesTable, categoryID, assetID)
}

// SetContentAsset writes assetID back onto the content row.
func (s *Store) SetContentAsset(ctx context.Context, contentID, assetID int64) error {
	return s.setAssetID(ctx, types.ContentTable, contentID, assetID)
}

func (s *Store) setAssetID(ctx context.Context, table string, id, assetID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE ? SET asset_id = ? WHERE id = ?",
		s.Ident(table), assetID, id,
	)
	if err != nil {
		return fmt.Errorf("update %s.asset_id for id %d: %w", s.Table(table), id, err)
	}
	return nil
}
