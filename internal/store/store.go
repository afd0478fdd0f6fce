// Package store is the relational store adapter used by every assetfix
// component. It wraps a bun database on MySQL or SQLite, substitutes the
// #__ table prefix placeholder and exposes the few schema-level statements
// the repair needs (existence check, structural clone, row copy).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Store wraps a bun database bound to one table prefix.
type Store struct {
	db     *bun.DB
	driver string
	prefix string
	log    logrus.FieldLogger
}

// Open connects to the database described by cfg and verifies the
// connection. The pool is limited to one connection: every statement of a
// run is executed sequentially and immediately committed.
func Open(ctx context.Context, cfg types.Config, log logrus.FieldLogger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		sqldb *sql.DB
		err   error
	)
	switch cfg.Driver {
	case types.DriverMySQL:
		sqldb, err = sql.Open("mysql", MySQLDSN(cfg))
	case types.DriverSQLite:
		sqldb, err = sql.Open("sqlite", cfg.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	return New(sqldb, cfg, log), nil
}

// New wraps an already opened *sql.DB. The dialect follows cfg.Driver.
// Executed literal statements are traced on log.
func New(sqldb *sql.DB, cfg types.Config, log logrus.FieldLogger) *Store {
	var db *bun.DB
	if cfg.Driver == types.DriverMySQL {
		db = bun.NewDB(sqldb, mysqldialect.New())
	} else {
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	return &Store{db: db, driver: cfg.Driver, prefix: cfg.Prefix, log: log}
}

// MySQLDSN builds a go-sql-driver DSN from the connection fields of cfg.
func MySQLDSN(cfg types.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	host := cfg.Host
	if host == "" {
		host = types.DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = types.DefaultPort
	}
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	return mc.FormatDSN()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the bun handle for model queries.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Table resolves a logical #__ table name to its physical name.
func (s *Store) Table(name string) string {
	return strings.ReplaceAll(name, types.TablePrefixPlaceholder, s.prefix)
}

// Ident returns the physical table name as a quoted bun identifier.
func (s *Store) Ident(name string) bun.Ident {
	return bun.Ident(s.Table(name))
}

// ReplacePrefix substitutes the table prefix in a full SQL statement.
func (s *Store) ReplacePrefix(query string) string {
	return ReplacePrefix(query, s.prefix)
}

// ReplacePrefix replaces every #__ placeholder in query with prefix, leaving
// single and double quoted literals untouched.
func ReplacePrefix(query, prefix string) string {
	var b strings.Builder
	b.Grow(len(query))

	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(query) {
				i++
				b.WriteByte(query[i])
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case strings.HasPrefix(query[i:], types.TablePrefixPlaceholder):
			b.WriteString(prefix)
			i += len(types.TablePrefixPlaceholder) - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// TableExists reports whether the logical table exists in the connected
// schema.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var (
		count int
		err   error
	)
	switch s.driver {
	case types.DriverMySQL:
		err = s.db.NewRaw(
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
			s.Table(name),
		).Scan(ctx, &count)
	default:
		err = s.db.NewRaw(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
			s.Table(name),
		).Scan(ctx, &count)
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", s.Table(name), err)
	}
	return count > 0, nil
}

// CloneTable creates to with the structure of from and no rows.
func (s *Store) CloneTable(ctx context.Context, from, to string) error {
	if s.driver == types.DriverMySQL {
		if _, err := s.db.ExecContext(ctx, "CREATE TABLE ? LIKE ?", s.Ident(to), s.Ident(from)); err != nil {
			return fmt.Errorf("clone %s to %s: %w", s.Table(from), s.Table(to), err)
		}
		return nil
	}

	var ddl string
	err := s.db.NewRaw(
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?",
		s.Table(from),
	).Scan(ctx, &ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("clone %s: %w", s.Table(from), types.ErrSourceTableMissing)
	}
	if err != nil {
		return fmt.Errorf("read ddl of %s: %w", s.Table(from), err)
	}
	open := strings.Index(ddl, "(")
	if open < 0 {
		return fmt.Errorf("read ddl of %s: unexpected definition %q", s.Table(from), ddl)
	}
	// The column list is reused verbatim; only the table name changes.
	clone := "CREATE TABLE " + quoteSQLiteIdent(s.Table(to)) + " " + ddl[open:]
	if _, err := s.db.DB.ExecContext(ctx, clone); err != nil {
		return fmt.Errorf("clone %s to %s: %w", s.Table(from), s.Table(to), err)
	}
	return nil
}

// CopyRows inserts every row of from into to. Both tables must share the
// same column layout.
func (s *Store) CopyRows(ctx context.Context, from, to string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO ? SELECT * FROM ?", s.Ident(to), s.Ident(from))
	if err != nil {
		return 0, fmt.Errorf("copy %s to %s: %w", s.Table(from), s.Table(to), err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteRows removes every row of the logical table.
func (s *Store) DeleteRows(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM ?", s.Ident(name)); err != nil {
		return fmt.Errorf("delete from %s: %w", s.Table(name), err)
	}
	return nil
}

// ExecStatement runs one literal statement after prefix substitution. The
// statement bypasses the bun formatter so that question marks inside
// literals survive.
func (s *Store) ExecStatement(ctx context.Context, stmt string) error {
	query := s.ReplacePrefix(stmt)
	s.log.WithField("statement", abbreviate(query)).Trace("exec")
	if _, err := s.db.DB.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func abbreviate(s string) string {
	const limit = 120
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
