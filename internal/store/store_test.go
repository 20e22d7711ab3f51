package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)
		assert.Equal(t, path, s.Path())

		version, err := s.Version()
		require.NoError(t, err)
		assert.Equal(t, schemaVersion, version)

		var n int
		require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM results").Scan(&n))
		assert.Zero(t, n)
		require.NoError(t, s.Close())
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "results.db"))
	assert.Error(t, err)
}

func TestClose_ZeroStore(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	// sqlite reports the applied values, not the names used to set them.
	want := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	}
	for name, value := range want {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, value, got, name)
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	assert.Subset(t, tableColumns(t, s.db, "results"),
		append([]string{"session_id", "seq", "fingerprint"}, resultColumns...))
	assert.Subset(t, tableColumns(t, s.db, "sessions"), []string{"seq", "id", "experiment"})
}

func TestSchema_ResultsNeedSession(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteRow(context.Background(), "unknown-session", 1, sampleRow("ADULT", 1))
	assert.Error(t, err)
}

func TestMigrate_FromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	for _, idx := range []string{"idx_results_fingerprint", "idx_results_group"} {
		_, err = db.Exec("DROP INDEX " + idx)
		require.NoError(t, err)
	}
	_, err = db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
	assert.Subset(t, tableIndexes(t, s.db, "results"),
		[]string{"idx_results_fingerprint", "idx_results_group"})
}

func TestMigrations_Ordered(t *testing.T) {
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].version, migrations[i-1].version)
	}
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()
	return scanNames(t, rows)
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?", table)
	require.NoError(t, err)
	defer rows.Close()
	return scanNames(t, rows)
}

func scanNames(t *testing.T, rows *sql.Rows) []string {
	t.Helper()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
