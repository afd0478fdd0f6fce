package store

import (
	"github.com/uptrace/bun"

	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Bun models for the CMS tables. Table names in the tags are logical; every
// query sets the prefixed physical name with ModelTableExpr and reuses the
// alias declared here.

// AssetModel represents a row of #__assets.
type AssetModel struct {
	bun.BaseModel `bun:"table:assets,alias:a"`

	ID       int64  `bun:"id,pk,autoincrement"`
	ParentID int64  `bun:"parent_id,notnull"`
	Lft      int64  `bun:"lft,notnull"`
	Rgt      int64  `bun:"rgt,notnull"`
	Level    int    `bun:"level,notnull"`
	Name     string `bun:"name,notnull"`
	Title    string `bun:"title,notnull"`
	Rules    string `bun:"rules,notnull"`
}

// ToAsset converts the model to the shared record.
func (m *AssetModel) ToAsset() *types.Asset {
	return &types.Asset{
		ID:       m.ID,
		ParentID: m.ParentID,
		Lft:      m.Lft,
		Rgt:      m.Rgt,
		Level:    m.Level,
		Name:     m.Name,
		Title:    m.Title,
		Rules:    m.Rules,
	}
}

// AssetModelFrom converts a shared record to its model.
func AssetModelFrom(a *types.Asset) *AssetModel {
	return &AssetModel{
		ID:       a.ID,
		ParentID: a.ParentID,
		Lft:      a.Lft,
		Rgt:      a.Rgt,
		Level:    a.Level,
		Name:     a.Name,
		Title:    a.Title,
		Rules:    a.Rules,
	}
}

// ExtensionModel represents the columns of #__extensions the repair reads.
type ExtensionModel struct {
	bun.BaseModel `bun:"table:extensions,alias:e"`

	ExtensionID int64  `bun:"extension_id,pk"`
	Name        string `bun:"name"`
	Element     string `bun:"element"`
	Type        string `bun:"type"`
	Protected   int    `bun:"protected"`
}

// ToExtension converts the model to the shared record.
func (m *ExtensionModel) ToExtension() types.Extension {
	return types.Extension{
		ExtensionID: m.ExtensionID,
		Name:        m.Name,
		Element:     m.Element,
		Type:        m.Type,
		Protected:   m.Protected != 0,
	}
}

// CategoryModel represents the columns of #__categories the repair reads.
type CategoryModel struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        int64  `bun:"id,pk"`
	AssetID   int64  `bun:"asset_id"`
	ParentID  int64  `bun:"parent_id"`
	Level     int    `bun:"level"`
	Extension string `bun:"extension"`
	Title     string `bun:"title"`
}

// ToCategory converts the model to the shared record.
func (m *CategoryModel) ToCategory() types.Category {
	return types.Category{
		ID:        m.ID,
		AssetID:   m.AssetID,
		ParentID:  m.ParentID,
		Level:     m.Level,
		Extension: m.Extension,
		Title:     m.Title,
	}
}

// ContentModel represents the columns of #__content the repair reads.
type ContentModel struct {
	bun.BaseModel `bun:"table:content,alias:ct"`

	ID      int64  `bun:"id,pk"`
	AssetID int64  `bun:"asset_id"`
	CatID   int64  `bun:"catid"`
	Title   string `bun:"title"`
}

// ToContent converts the model to the shared record.
func (m *ContentModel) ToContent() types.Content {
	return types.Content{
		ID:      m.ID,
		AssetID: m.AssetID,
		CatID:   m.CatID,
		Title:   m.Title,
	}
}
