// Package tree stores assets as a nested-set tree.
//
// Every attached node carries lft and rgt bounds that enclose the bounds of
// all its descendants, plus a denormalized parent_id and level. Nodes stored
// without a location are detached: parent_id, lft, rgt and level are all
// zero and the bound arithmetic never selects them.
//
// Statements are executed one at a time without a surrounding transaction.
// A failure part way through a move leaves the bounds inconsistent; Check
// detects that and the backup tables allow recovery.
package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Table is the nested-set view of the asset table.
type Table struct {
	store *store.Store
	name  string
	log   logrus.FieldLogger
}

// New returns a Table over #__assets.
func New(s *store.Store, log logrus.FieldLogger) *Table {
	return &Table{store: s, name: types.AssetsTable, log: log}
}

func (t *Table) ident() bun.Ident {
	return t.store.Ident(t.name)
}

func (t *Table) selectAsset(m any) *bun.SelectQuery {
	return t.store.DB().NewSelect().Model(m).ModelTableExpr("? AS a", t.ident())
}

// LoadByName returns the node with the given name or ErrNotFound.
func (t *Table) LoadByName(ctx context.Context, name string) (*Node, error) {
	var m store.AssetModel
	err := t.selectAsset(&m).Where("a.name = ?", name).Limit(1).Scan(ctx)
	return t.loaded(&m, err, "name "+name)
}

// LoadByID returns the node with the given id or ErrNotFound.
func (t *Table) LoadByID(ctx context.Context, id int64) (*Node, error) {
	var m store.AssetModel
	err := t.selectAsset(&m).Where("a.id = ?", id).Limit(1).Scan(ctx)
	return t.loaded(&m, err, fmt.Sprintf("id %d", id))
}

func (t *Table) loaded(m *store.AssetModel, err error, key string) (*Node, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", key, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", key, err)
	}
	return &Node{Asset: *m.ToAsset()}, nil
}

// All returns every asset ordered by lft then id. Detached nodes come first.
func (t *Table) All(ctx context.Context) ([]types.Asset, error) {
	var rows []store.AssetModel
	if err := t.selectAsset(&rows).Order("a.lft", "a.id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	assets := make([]types.Asset, len(rows))
	for i := range rows {
		assets[i] = *rows[i].ToAsset()
	}
	return assets, nil
}

// Store inserts or updates n. A pending location attaches a new node or
// moves an existing one with its whole subtree; without a location a new
// node is inserted detached and an existing node only has its name, title
// and rules updated. On success n holds the stored bounds and its location
// is cleared.
func (t *Table) Store(ctx context.Context, n *Node) error {
	ref, located := n.Location()
	if located && n.position != LastChild {
		return types.ErrInvalidPosition
	}

	var err error
	switch {
	case n.IsNew() && !located:
		err = t.insertDetached(ctx, n)
	case n.IsNew():
		err = t.insertLastChild(ctx, n, ref)
	case !located:
		err = t.updateFields(ctx, n)
	default:
		err = t.moveLastChild(ctx, n, ref)
	}
	if err != nil {
		return err
	}
	n.ClearLocation()
	return nil
}

func (t *Table) insertDetached(ctx context.Context, n *Node) error {
	n.ParentID, n.Lft, n.Rgt, n.Level = 0, 0, 0, 0
	return t.insertRow(ctx, n)
}

func (t *Table) insertLastChild(ctx context.Context, n *Node, parentID int64) error {
	p, err := t.loadParent(ctx, parentID)
	if err != nil {
		return err
	}
	if err := t.openGap(ctx, p.Rgt, 2); err != nil {
		return err
	}
	n.ParentID = p.ID
	n.Lft = p.Rgt
	n.Rgt = p.Rgt + 1
	n.Level = p.Level + 1
	return t.insertRow(ctx, n)
}

func (t *Table) insertRow(ctx context.Context, n *Node) error {
	m := store.AssetModelFrom(&n.Asset)
	m.ID = 0
	res, err := t.store.DB().NewInsert().
		Model(m).
		ModelTableExpr("?", t.ident()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert asset %s: %w", n.Name, err)
	}
	if m.ID == 0 {
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert asset %s: %w", n.Name, err)
		}
	}
	n.ID = m.ID
	t.log.WithFields(logrus.Fields{
		"asset":  n.Name,
		"id":     n.ID,
		"parent": n.ParentID,
	}).Debug("asset inserted")
	return nil
}

func (t *Table) updateFields(ctx context.Context, n *Node) error {
	_, err := t.store.DB().ExecContext(ctx,
		"UPDATE ? SET name = ?, title = ?, rules = ? WHERE id = ?",
		t.ident(), n.Name, n.Title, n.Rules, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", n.ID, err)
	}
	return nil
}

func (t *Table) moveLastChild(ctx context.Context, n *Node, parentID int64) error {
	if n.ID == types.RootAssetID {
		return types.ErrRootImmutable
	}
	cur, err := t.LoadByID(ctx, n.ID)
	if err != nil {
		return err
	}
	p, err := t.loadParent(ctx, parentID)
	if err != nil {
		return err
	}

	// A detached node owns no bounds; attaching it is an insertion into an
	// existing row.
	if cur.Detached() {
		if err := t.openGap(ctx, p.Rgt, 2); err != nil {
			return err
		}
		n.ParentID, n.Lft, n.Rgt, n.Level = p.ID, p.Rgt, p.Rgt+1, p.Level+1
		return t.updateRow(ctx, n)
	}

	if p.Lft >= cur.Lft && p.Rgt <= cur.Rgt {
		return fmt.Errorf("move asset %d under %d: %w", cur.ID, p.ID, types.ErrInvalidMove)
	}
	if cur.ParentID == p.ID && cur.Rgt+1 == p.Rgt {
		n.ParentID, n.Lft, n.Rgt, n.Level = cur.ParentID, cur.Lft, cur.Rgt, cur.Level
		return t.updateFields(ctx, n)
	}

	width := cur.Width()
	steps := []struct {
		query string
		args  []any
	}{
		// Lift the subtree out of the bound space.
		{"UPDATE ? SET lft = -lft, rgt = -rgt WHERE lft BETWEEN ? AND ?", []any{cur.Lft, cur.Rgt}},
		// Close the hole it leaves.
		{"UPDATE ? SET lft = lft - ? WHERE lft > ?", []any{width, cur.Rgt}},
		{"UPDATE ? SET rgt = rgt - ? WHERE rgt > ?", []any{width, cur.Rgt}},
	}
	for _, s := range steps {
		if _, err := t.store.DB().ExecContext(ctx, s.query, append([]any{t.ident()}, s.args...)...); err != nil {
			return fmt.Errorf("move asset %d: %w", cur.ID, err)
		}
	}

	// Parent bounds changed when the hole was closed.
	if p, err = t.LoadByID(ctx, p.ID); err != nil {
		return err
	}
	if err := t.openGap(ctx, p.Rgt, width); err != nil {
		return err
	}

	offset := p.Rgt - cur.Lft
	levelOffset := p.Level + 1 - cur.Level
	_, err = t.store.DB().ExecContext(ctx,
		"UPDATE ? SET lft = ? - lft, rgt = ? - rgt, level = level + ? WHERE lft < 0",
		t.ident(), offset, offset, levelOffset,
	)
	if err != nil {
		return fmt.Errorf("move asset %d: %w", cur.ID, err)
	}

	n.ParentID = p.ID
	n.Lft = p.Rgt
	n.Rgt = p.Rgt + width - 1
	n.Level = p.Level + 1
	return t.updateRow(ctx, n)
}

func (t *Table) updateRow(ctx context.Context, n *Node) error {
	_, err := t.store.DB().ExecContext(ctx,
		"UPDATE ? SET parent_id = ?, lft = ?, rgt = ?, level = ?, name = ?, title = ?, rules = ? WHERE id = ?",
		t.ident(), n.ParentID, n.Lft, n.Rgt, n.Level, n.Name, n.Title, n.Rules, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", n.ID, err)
	}
	return nil
}

// openGap shifts every bound at or right of at by width so that a subtree
// of that width fits at position at.
func (t *Table) openGap(ctx context.Context, at, width int64) error {
	if _, err := t.store.DB().ExecContext(ctx,
		"UPDATE ? SET lft = lft + ? WHERE lft > ?", t.ident(), width, at,
	); err != nil {
		return fmt.Errorf("shift lft: %w", err)
	}
	if _, err := t.store.DB().ExecContext(ctx,
		"UPDATE ? SET rgt = rgt + ? WHERE rgt >= ?", t.ident(), width, at,
	); err != nil {
		return fmt.Errorf("shift rgt: %w", err)
	}
	return nil
}

func (t *Table) loadParent(ctx context.Context, id int64) (*Node, error) {
	p, err := t.LoadByID(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("parent %d: %w", id, types.ErrParentNotFound)
	}
	if err != nil {
		return nil, err
	}
	if p.Detached() {
		return nil, fmt.Errorf("parent %d: %w", id, types.ErrParentDetached)
	}
	return p, nil
}
