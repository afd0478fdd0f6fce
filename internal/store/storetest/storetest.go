// Package storetest provides SQLite CMS databases for tests of packages
// built on the store.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Prefix is the table prefix used by test databases.
const Prefix = "jos_"

// Config returns a SQLite configuration pointing into a fresh temporary
// directory.
func Config(t testing.TB) types.Config {
	t.Helper()
	return types.Config{
		Driver:   types.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "cms.db"),
		Prefix:   Prefix,
		LogLevel: types.DefaultLogLevel,
	}
}

// Open returns a store on a new SQLite database with the CMS schema
// created.
func Open(t testing.TB) *store.Store {
	t.Helper()
	return OpenConfig(t, Config(t))
}

// OpenConfig opens cfg, creates the CMS schema and registers the store's
// cleanup with t.
func OpenConfig(t testing.TB, cfg types.Config) *store.Store {
	t.Helper()
	ctx := context.Background()

	log, _ := test.NewNullLogger()
	s, err := store.Open(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, CreateSchema(ctx, s))
	return s
}

// Exec runs literal statements against s, failing t on the first error.
func Exec(t testing.TB, s *store.Store, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		require.NoError(t, s.ExecStatement(context.Background(), stmt), stmt)
	}
}
