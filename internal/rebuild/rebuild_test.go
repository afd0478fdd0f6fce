package rebuild

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assetfix/internal/backup"
	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/internal/store/storetest"
	"github.com/mesh-intelligence/assetfix/internal/tree"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

const insertRoot = "INSERT INTO #__assets (id, parent_id, lft, rgt, level, name, title, rules) VALUES (1, 0, 0, 1, 0, 'root.1', 'Root Asset', '{}')"

type fixture struct {
	store   *store.Store
	tree    *tree.Table
	builder *Builder
	hook    *test.Hook
}

func newFixture(t *testing.T, stmts ...string) *fixture {
	t.Helper()
	s := storetest.Open(t)
	storetest.Exec(t, s, insertRoot)
	storetest.Exec(t, s, stmts...)
	log, hook := test.NewNullLogger()
	tbl := tree.New(s, log)
	return &fixture{store: s, tree: tbl, builder: New(s, tbl, log), hook: hook}
}

// parents maps every asset name to the name of its parent, or "" when the
// asset is the root or detached.
func (f *fixture) parents(t *testing.T) map[string]string {
	t.Helper()
	assets, err := f.tree.All(context.Background())
	require.NoError(t, err)
	byID := make(map[int64]string, len(assets))
	for _, a := range assets {
		byID[a.ID] = a.Name
	}
	got := make(map[string]string, len(assets))
	for _, a := range assets {
		got[a.Name] = byID[a.ParentID]
	}
	return got
}

func (f *fixture) asset(t *testing.T, name string) *tree.Node {
	t.Helper()
	n, err := f.tree.LoadByName(context.Background(), name)
	require.NoError(t, err)
	return n
}

func (f *fixture) warnings() []string {
	var msgs []string
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

var extensionRows = []string{
	"INSERT INTO #__extensions (extension_id, name, type, element, protected) VALUES (10, 'Articles', 'component', 'com_content', 0)",
	"INSERT INTO #__extensions (extension_id, name, type, element, protected) VALUES (11, 'Contacts', 'component', 'com_contact', 0)",
	"INSERT INTO #__extensions (extension_id, name, type, element, protected) VALUES (12, 'Admin', 'component', 'com_admin', 1)",
	"INSERT INTO #__extensions (extension_id, name, type, element, protected) VALUES (13, 'Menu', 'module', 'mod_menu', 0)",
}

func TestFixExtensionsCreatesComponentsUnderRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, extensionRows...)

	st, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 2, Created: 2}, st)

	assert.Equal(t, map[string]string{
		"root.1":      "",
		"com_content": "root.1",
		"com_contact": "root.1",
	}, f.parents(t))

	n := f.asset(t, "com_content")
	assert.Equal(t, "Articles", n.Title)
	assert.Equal(t, types.DefaultExtensionRules, n.Rules)
	assert.Equal(t, 1, n.Level)
}

func TestFixExtensionsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, extensionRows...)

	_, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	before := f.parents(t)

	st, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 2, Skipped: 2}, st)
	assert.Equal(t, before, f.parents(t))

	_, err = f.tree.Check(ctx)
	require.NoError(t, err)
}

func TestFixCategoriesUnderExtension(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (1, 0, 0, 'system', 'ROOT')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (9, 8, 2, 'com_content', 'Local')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (5, 1, 1, 'com_contact_details', 'Staff')",
	)...)

	_, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	st, err := f.builder.FixCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 3, Created: 3}, st)

	parents := f.parents(t)
	assert.Equal(t, "com_content", parents["com_content.category.8"])
	assert.Equal(t, "com_content.category.8", parents["com_content.category.9"])
	assert.Equal(t, "com_contact", parents["com_contact.category.5"], "legacy extension rewritten")

	news := f.asset(t, "com_content.category.8")
	assert.Equal(t, "News", news.Title)
	assert.Equal(t, types.DefaultCategoryRules, news.Rules)

	cats, err := f.store.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		assert.Equal(t, f.asset(t, c.AssetName()).ID, c.AssetID, "asset_id written back for category %d", c.ID)
	}
}

func TestFixCategoriesUpdatesExistingAsset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
	)...)
	_, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)

	// A stale asset for the category sits under the wrong extension.
	stale := tree.NewNode("com_content.category.8", "Old title", "{}")
	stale.SetLocation(f.asset(t, "com_contact").ID, tree.LastChild)
	require.NoError(t, f.tree.Store(ctx, stale))

	st, err := f.builder.FixCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 1, Updated: 1}, st)

	n := f.asset(t, "com_content.category.8")
	assert.Equal(t, stale.ID, n.ID)
	assert.Equal(t, "News", n.Title)
	assert.Equal(t, "com_content", f.parents(t)["com_content.category.8"])

	_, err = f.tree.Check(ctx)
	require.NoError(t, err)
}

func TestFixContentUnderCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
		"INSERT INTO #__content (id, catid, title) VALUES (4, 8, 'Hello')",
		"INSERT INTO #__content (id, catid, title) VALUES (5, 1, 'Top level')",
	)...)

	_, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	_, err = f.builder.FixCategories(ctx)
	require.NoError(t, err)
	st, err := f.builder.FixContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 2, Created: 2}, st)

	parents := f.parents(t)
	assert.Equal(t, "com_content.category.8", parents["com_content.article.4"])
	assert.Equal(t, "com_content", parents["com_content.article.5"])

	article := f.asset(t, "com_content.article.4")
	assert.Equal(t, "Hello", article.Title)
	assert.Equal(t, types.DefaultContentRules, article.Rules)
	assert.Equal(t, 3, article.Level)

	items, err := f.store.ListContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, article.ID, items[0].AssetID)
}

func TestDetachedNodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (6, 0, 1, 'com_content', 'Loose')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (7, 1, 1, 'com_weblinks', 'Links')",
		"INSERT INTO #__content (id, catid, title) VALUES (3, 0, 'Draft')",
		"INSERT INTO #__content (id, catid, title) VALUES (2, 99, 'Lost')",
	)...)

	sum, err := f.builder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Categories.Detached)
	assert.Equal(t, 2, sum.Content.Detached)

	for _, name := range []string{
		"com_content.category.6",
		"com_weblinks.category.7",
		"com_content.article.3",
		"com_content.article.2",
	} {
		n := f.asset(t, name)
		assert.True(t, n.Detached(), name)
		assert.Zero(t, n.Lft, name)
		assert.Zero(t, n.Rgt, name)
	}
	assert.Len(t, f.warnings(), 2, "missing extension and missing category are reported")

	var phases []any
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			phases = append(phases, e.Data["phase"])
		}
	}
	assert.Equal(t, []any{"categories", "content"}, phases, "warnings carry the pass that logged them")

	report, err := f.tree.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Detached)
}

func TestRulesRestoredFromBackup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
		"INSERT INTO #__content (id, catid, title) VALUES (4, 8, 'Hello')",
		"INSERT INTO #__content (id, catid, title) VALUES (5, 8, 'World')",
		"UPDATE #__assets SET rgt = 5 WHERE id = 1",
		`INSERT INTO #__assets (id, parent_id, lft, rgt, level, name, title, rules) VALUES (20, 1, 1, 2, 1, 'com_content.article.4', 'Hello', '{"core.delete":{"6":1}}')`,
		`INSERT INTO #__assets (id, parent_id, lft, rgt, level, name, title, rules) VALUES (21, 1, 3, 4, 1, 'com_content', 'Articles', '{"core.admin":{"8":1}}')`,
	)...)

	log, _ := test.NewNullLogger()
	_, err := backup.NewManager(f.store, log).Backup(ctx, types.RepairedTables...)
	require.NoError(t, err)
	storetest.Exec(t, f.store, "DELETE FROM #__assets", insertRoot)

	_, err = f.builder.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, `{"core.admin":{"8":1}}`, f.asset(t, "com_content").Rules)
	assert.Equal(t, types.DefaultExtensionRules, f.asset(t, "com_contact").Rules)
	assert.Equal(t, types.DefaultCategoryRules, f.asset(t, "com_content.category.8").Rules)
	assert.Equal(t, `{"core.delete":{"6":1}}`, f.asset(t, "com_content.article.4").Rules)
	assert.Equal(t, types.DefaultContentRules, f.asset(t, "com_content.article.5").Rules)
}

func TestRulesWithoutBackupTable(t *testing.T) {
	f := newFixture(t)
	rules, err := f.builder.Rules(context.Background(), "com_content.article.1", types.KindContent)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultContentRules, rules)
}

func TestResolveParent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (9, 1, 1, 'com_content', 'Unbuilt')",
	)...)
	_, err := f.builder.FixExtensions(ctx)
	require.NoError(t, err)
	news := tree.NewNode("com_content.category.8", "News", "{}")
	news.SetLocation(f.asset(t, "com_content").ID, tree.LastChild)
	require.NoError(t, f.tree.Store(ctx, news))

	tests := []struct {
		name       string
		ref        int64
		extension  string
		wantParent int64
		wantAttach bool
	}{
		{"no parent", 0, "com_content", 0, false},
		{"extension root", 1, "com_content", f.asset(t, "com_content").ID, true},
		{"missing extension", 1, "com_nothing", 0, false},
		{"category by title", 8, "com_content", news.ID, true},
		{"category without asset", 9, "com_content", 0, false},
		{"unknown category", 404, "com_content", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, attach, err := f.builder.ResolveParent(ctx, tt.ref, tt.extension)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParent, parent)
			assert.Equal(t, tt.wantAttach, attach)
		})
	}
}

func TestRunProducesSoundTree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, append(extensionRows,
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (1, 0, 0, 'system', 'ROOT')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (8, 1, 1, 'com_content', 'News')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (9, 8, 2, 'com_content', 'Local')",
		"INSERT INTO #__categories (id, parent_id, level, extension, title) VALUES (5, 1, 1, 'com_contact_details', 'Staff')",
		"INSERT INTO #__content (id, catid, title) VALUES (4, 8, 'Hello')",
		"INSERT INTO #__content (id, catid, title) VALUES (7, 9, 'Town')",
	)...)

	sum, err := f.builder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Extensions.Created)
	assert.Equal(t, 3, sum.Categories.Created)
	assert.Equal(t, 2, sum.Content.Created)

	report, err := f.tree.Check(ctx)
	require.NoError(t, err, "issues: %v", report.Issues)
	assert.Equal(t, 8, report.Attached)
	assert.Equal(t, 0, report.Detached)
	assert.Equal(t, "com_content.category.9", f.parents(t)["com_content.article.7"])
}

func TestRunHonorsCancellation(t *testing.T) {
	f := newFixture(t, extensionRows...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.builder.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
