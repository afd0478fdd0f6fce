// Package backup snapshots the tables the repair mutates into <table>_backup
// shadow tables and restores them on operator request.
//
// A backup is taken once. When the shadow table already exists it is left
// untouched, so re-running the repair never overwrites the pre-repair state.
package backup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Report lists what a Backup call did per table.
type Report struct {
	Created []string         // Backup tables created by this call.
	Skipped []string         // Backup tables that already existed.
	Rows    map[string]int64 // Rows copied per created backup table.
}

// Manager creates and restores backup tables.
type Manager struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewManager returns a Manager working on s.
func NewManager(s *store.Store, log logrus.FieldLogger) *Manager {
	return &Manager{store: s, log: log}
}

// TableExists reports whether the logical table exists.
func (m *Manager) TableExists(ctx context.Context, name string) (bool, error) {
	return m.store.TableExists(ctx, name)
}

// CloneStructure creates to with the structure of from. It returns false and
// ErrSourceTableMissing when from does not exist.
func (m *Manager) CloneStructure(ctx context.Context, from, to string) (bool, error) {
	ok, err := m.store.TableExists(ctx, from)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%s: %w", m.store.Table(from), types.ErrSourceTableMissing)
	}
	if err := m.store.CloneTable(ctx, from, to); err != nil {
		return false, err
	}
	return true, nil
}

// CopyRows copies every row of from into to.
func (m *Manager) CopyRows(ctx context.Context, from, to string) error {
	_, err := m.copyRows(ctx, from, to)
	return err
}

func (m *Manager) copyRows(ctx context.Context, from, to string) (int64, error) {
	return m.store.CopyRows(ctx, from, to)
}

// Backup snapshots each table unless its backup already exists.
func (m *Manager) Backup(ctx context.Context, tables ...string) (Report, error) {
	report := Report{Rows: make(map[string]int64)}
	for _, table := range tables {
		target := types.BackupTableName(table)
		exists, err := m.store.TableExists(ctx, target)
		if err != nil {
			return report, fmt.Errorf("backup %s: %w", m.store.Table(table), err)
		}
		if exists {
			m.log.WithField("table", m.store.Table(target)).Debug("backup exists, skipping")
			report.Skipped = append(report.Skipped, target)
			continue
		}

		if _, err := m.CloneStructure(ctx, table, target); err != nil {
			return report, fmt.Errorf("backup %s: %w", m.store.Table(table), err)
		}
		n, err := m.copyRows(ctx, table, target)
		if err != nil {
			return report, fmt.Errorf("backup %s: %w", m.store.Table(table), err)
		}
		m.log.WithFields(logrus.Fields{
			"table": m.store.Table(target),
			"rows":  n,
		}).Info("backup created")
		report.Created = append(report.Created, target)
		report.Rows[target] = n
	}
	return report, nil
}

// Restore replaces the rows of each table with the rows of its backup. All
// backups are checked before any table is touched.
func (m *Manager) Restore(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		target := types.BackupTableName(table)
		ok, err := m.store.TableExists(ctx, target)
		if err != nil {
			return fmt.Errorf("restore %s: %w", m.store.Table(table), err)
		}
		if !ok {
			return fmt.Errorf("restore %s: %w", m.store.Table(table), types.ErrBackupMissing)
		}
	}

	for _, table := range tables {
		target := types.BackupTableName(table)
		if err := m.store.DeleteRows(ctx, table); err != nil {
			return fmt.Errorf("restore %s: %w", m.store.Table(table), err)
		}
		n, err := m.copyRows(ctx, target, table)
		if err != nil {
			return fmt.Errorf("restore %s: %w", m.store.Table(table), err)
		}
		m.log.WithFields(logrus.Fields{
			"table": m.store.Table(table),
			"rows":  n,
		}).Info("table restored")
	}
	return nil
}
