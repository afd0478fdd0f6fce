package storetest

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/assetfix/internal/store"
)

// SQLite DDL for the subset of the CMS schema the repair touches. Production
// MySQL schemas are owned by the CMS itself.
const (
	createAssets = `CREATE TABLE #__assets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    parent_id INTEGER NOT NULL DEFAULT 0,
    lft INTEGER NOT NULL DEFAULT 0,
    rgt INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(50) NOT NULL UNIQUE,
    title VARCHAR(100) NOT NULL DEFAULT '',
    rules VARCHAR(5120) NOT NULL DEFAULT ''
)`

	createExtensions = `CREATE TABLE #__extensions (
    extension_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(100) NOT NULL DEFAULT '',
    type VARCHAR(20) NOT NULL DEFAULT '',
    element VARCHAR(100) NOT NULL DEFAULT '',
    protected INTEGER NOT NULL DEFAULT 0
)`

	createCategories = `CREATE TABLE #__categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    asset_id INTEGER NOT NULL DEFAULT 0,
    parent_id INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 0,
    extension VARCHAR(50) NOT NULL DEFAULT '',
    title VARCHAR(255) NOT NULL DEFAULT ''
)`

	createContent = `CREATE TABLE #__content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    asset_id INTEGER NOT NULL DEFAULT 0,
    catid INTEGER NOT NULL DEFAULT 0,
    title VARCHAR(255) NOT NULL DEFAULT ''
)`

	idxAssetsLftRgt  = `CREATE INDEX #__idx_assets_lft_rgt ON #__assets(lft, rgt)`
	idxAssetsParent  = `CREATE INDEX #__idx_assets_parent ON #__assets(parent_id)`
	idxCategoriesExt = `CREATE INDEX #__idx_categories_extension ON #__categories(extension)`
)

// schemaDDL lists the CREATE statements in execution order.
var schemaDDL = []string{
	createAssets,
	createExtensions,
	createCategories,
	createContent,
	idxAssetsLftRgt,
	idxAssetsParent,
	idxCategoriesExt,
}

// CreateSchema creates the CMS tables on an empty SQLite database.
func CreateSchema(ctx context.Context, s *store.Store) error {
	for _, stmt := range schemaDDL {
		if err := s.ExecStatement(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
