package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := OpenAndMigrate(Config{Path: path})
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO categories (id, name, slug) VALUES ('c1', 'Tech', 'tech')`)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Close())

	db, err = OpenAndMigrate(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&n))
	assert.Equal(t, 1, n)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestViewCountCannotGoNegative(t *testing.T) {
	db, err := OpenAndMigrate(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO articles (id, title) VALUES ('a1', 'T')`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE articles SET view_count = -1 WHERE id = 'a1'`)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on&_busy_timeout=5000", dsn(":memory:"))
	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", dsn("/tmp/x.db"))
	t.Setenv("AKILI_DB_PATH", "/srv/akili.db")
	assert.Equal(t, Config{Path: "/srv/akili.db"}, DefaultConfig())
}
