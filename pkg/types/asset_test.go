package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"category under content", CategoryAssetName("com_content", 8), "com_content.category.8"},
		{"article", ArticleAssetName(42), "com_content.article.42"},
		{"category legacy extension", (&Category{ID: 5, Extension: "com_contact_details"}).AssetName(), "com_contact.category.5"},
		{"category modern extension", (&Category{ID: 5, Extension: "com_banners"}).AssetName(), "com_banners.category.5"},
		{"content item", (&Content{ID: 7}).AssetName(), "com_content.article.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDefaultRules(t *testing.T) {
	assert.Equal(t, DefaultExtensionRules, DefaultRules(KindExtension))
	assert.Equal(t, DefaultCategoryRules, DefaultRules(KindCategory))
	assert.Equal(t, DefaultContentRules, DefaultRules(KindContent))
	assert.Equal(t, "{}", DefaultRules(AssetKind("module")))
	assert.NotEqual(t, DefaultCategoryRules, DefaultContentRules)
}

func TestAssetPredicates(t *testing.T) {
	root := &Asset{ID: RootAssetID, Lft: 0, Rgt: 7}
	child := &Asset{ID: 2, ParentID: 1, Lft: 1, Rgt: 4, Level: 1}
	detached := &Asset{ID: 9}

	assert.True(t, root.IsRoot())
	assert.False(t, root.Detached())
	assert.False(t, child.Detached())
	assert.True(t, detached.Detached())
	assert.Equal(t, int64(4), child.Width())
}

func TestExtensionParticipates(t *testing.T) {
	tests := []struct {
		name string
		ext  Extension
		want bool
	}{
		{"unprotected component", Extension{Element: "com_content", Type: "component"}, true},
		{"protected component", Extension{Element: "com_admin", Type: "component", Protected: true}, false},
		{"module", Extension{Element: "mod_menu", Type: "module"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ext.Participates())
		})
	}
}
