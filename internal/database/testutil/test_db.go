package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/database"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	file        bool
}

// WithAutoMigrate applies the schema after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithFile backs the database with a file in t.TempDir instead of memory,
// so concurrent tests get a real connection pool.
func WithFile() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.file = true
	}
}

// MustOpenTestDB opens an isolated SQLite database, in memory by default. The connection
// is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dbCfg := database.Config{Driver: "sqlite"}
	if cfg.file {
		dbCfg.Path = filepath.Join(t.TempDir(), "users.sqlite")
		dbCfg.MaxOpenConns = 8
	}

	db, err := database.Open(dbCfg)
	require.NoError(t, err)

	if cfg.autoMigrate {
		require.NoError(t, database.Migrate(db))
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
