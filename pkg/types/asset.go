package types

import "fmt"

// RootAssetID is the identifier of the tree root created by the seed script.
// The root is never recreated or moved by the rebuild.
const RootAssetID int64 = 1

// RootAssetName is the business key of the root asset.
const RootAssetName = "root.1"

// Asset is one node of the nested-set permission tree.
type Asset struct {
	ID       int64  // Primary key, generated on insert.
	ParentID int64  // Denormalized parent link; 0 for the root and detached nodes.
	Lft      int64  // Nested-set left bound.
	Rgt      int64  // Nested-set right bound.
	Level    int    // Depth below the root.
	Name     string // Unique business key, e.g. com_content.article.42.
	Title    string // Display title.
	Rules    string // Opaque serialized permission payload.
}

// IsRoot reports whether a is the tree root.
func (a *Asset) IsRoot() bool {
	return a.ID == RootAssetID
}

// Detached reports whether a was stored without a parent. Detached nodes keep
// zero bounds and are not part of the interval tree.
func (a *Asset) Detached() bool {
	return !a.IsRoot() && a.ParentID == 0
}

// Width returns the number of bound positions the node's subtree occupies.
func (a *Asset) Width() int64 {
	return a.Rgt - a.Lft + 1
}

// AssetKind identifies which source collection an asset was built from.
type AssetKind string

// Asset kinds handled by the rebuild.
const (
	KindExtension AssetKind = "extension"
	KindCategory  AssetKind = "category"
	KindContent   AssetKind = "content"
)

// Default rules payloads used when the backup holds no rules for a name.
// Extension and category defaults grant core.admin and core.manage
// explicitly; the content default only declares the article actions.
const (
	DefaultExtensionRules = `{"core.admin":{"7":1},"core.manage":{"6":1}}`
	DefaultCategoryRules  = `{"core.admin":{"7":1},"core.manage":{"6":1},"core.create":[],"core.delete":[],"core.edit":[],"core.edit.state":[],"core.edit.own":[]}`
	DefaultContentRules   = `{"core.delete":[],"core.edit":[],"core.edit.state":[]}`
)

// DefaultRules returns the fallback rules payload for kind.
func DefaultRules(kind AssetKind) string {
	switch kind {
	case KindExtension:
		return DefaultExtensionRules
	case KindCategory:
		return DefaultCategoryRules
	case KindContent:
		return DefaultContentRules
	default:
		return "{}"
	}
}

// CategoryAssetName returns the asset name of a category owned by extension.
func CategoryAssetName(extension string, id int64) string {
	return fmt.Sprintf("%s.category.%d", extension, id)
}

// ArticleAssetName returns the asset name of a content item.
func ArticleAssetName(id int64) string {
	return fmt.Sprintf("%s.article.%d", ContentExtension, id)
}
