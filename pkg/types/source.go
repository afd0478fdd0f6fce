package types

// ComponentType is the extension type discriminator that owns assets.
const ComponentType = "component"

// ContentExtension owns every content item asset.
const ContentExtension = "com_content"

// RootCategoryID is the implicit root of the category tree. It has no asset
// of its own and is skipped by the category pass.
const RootCategoryID int64 = 1

// Parent reference values shared by categories (parent_id) and content
// items (catid).
const (
	ParentNone          int64 = 0 // Do not attach.
	ParentExtensionRoot int64 = 1 // Attach under the owning extension's asset.
)

// legacyExtensions maps retired extension names to their modern equivalent.
var legacyExtensions = map[string]string{
	"com_contact_details": "com_contact",
}

// Extension is a row of #__extensions.
type Extension struct {
	ExtensionID int64
	Name        string // Display title.
	Element     string // Stable identifier, also the extension's asset name.
	Type        string
	Protected   bool
}

// Participates reports whether the extension owns an asset in the tree.
func (e *Extension) Participates() bool {
	return e.Type == ComponentType && !e.Protected
}

// Category is a row of #__categories.
type Category struct {
	ID        int64
	AssetID   int64
	ParentID  int64
	Level     int
	Extension string
	Title     string
}

// OwningExtension returns the category's extension name after the legacy
// rewrite.
func (c *Category) OwningExtension() string {
	return NormalizeExtension(c.Extension)
}

// AssetName returns the asset name for the category.
func (c *Category) AssetName() string {
	return CategoryAssetName(c.OwningExtension(), c.ID)
}

// Content is a row of #__content.
type Content struct {
	ID      int64
	AssetID int64
	CatID   int64
	Title   string
}

// AssetName returns the asset name for the content item.
func (c *Content) AssetName() string {
	return ArticleAssetName(c.ID)
}

// NormalizeExtension rewrites legacy extension names.
func NormalizeExtension(name string) string {
	if modern, ok := legacyExtensions[name]; ok {
		return modern
	}
	return name
}
