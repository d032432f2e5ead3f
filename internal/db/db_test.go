package db_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progression/internal/db"
)

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]db.Driver{
		"":         db.DriverSQLite,
		"sqlite3":  db.DriverSQLite,
		"SQLite":   db.DriverSQLite,
		"postgres": db.DriverPostgres,
		" pgx ":    db.DriverPostgres,
		"pg":       db.DriverPostgres,
	} {
		got, err := db.ParseDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := db.ParseDriver("mysql")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$2,$3,$4", db.Placeholders(2, 3))
	assert.Equal(t, "$1", db.Placeholders(1, 1))
	assert.Equal(t, "", db.Placeholders(1, 0))
}

func openSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+path+"?mode=rwc")
	require.NoError(t, err)
	return dbh
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.db")
	first := openSQLite(t, path)
	_, err := first.Exec(`INSERT INTO courses (id, title, created_at) VALUES ('c1', 'Course', 0)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openSQLite(t, path)
	defer second.Close()
	var n int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_QuestionKindConstraint(t *testing.T) {
	dbh := openSQLite(t, filepath.Join(t.TempDir(), "x.db"))
	defer dbh.Close()
	_, err := dbh.Exec(`INSERT INTO courses (id, title, created_at) VALUES ('c1', 'Course', 0)`)
	require.NoError(t, err)

	// final questions must not reference an activity
	_, err = dbh.Exec(`INSERT INTO questions (id, kind, activity_id, course_id) VALUES ('q1', 'final', NULL, NULL)`)
	assert.Error(t, err)
	_, err = dbh.Exec(`INSERT INTO questions (id, kind, course_id) VALUES ('q1', 'bogus', 'c1')`)
	assert.Error(t, err)
	_, err = dbh.Exec(`INSERT INTO questions (id, kind, course_id) VALUES ('q1', 'final', 'c1')`)
	assert.NoError(t, err)
}

func TestWithTx(t *testing.T) {
	dbh := openSQLite(t, filepath.Join(t.TempDir(), "x.db"))
	defer dbh.Close()
	ctx := context.Background()
	count := func() int {
		var n int
		require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&n))
		return n
	}

	boom := errors.New("boom")
	err := db.WithTx(ctx, dbh, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO courses (id, title, created_at) VALUES ('c1', 'Course', 0)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, count())

	assert.Panics(t, func() {
		_ = db.WithTx(ctx, dbh, func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO courses (id, title, created_at) VALUES ('c1', 'Course', 0)`)
			panic("bad")
		})
	})
	assert.Equal(t, 0, count())

	require.NoError(t, db.WithTx(ctx, dbh, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO courses (id, title, created_at) VALUES ('c1', 'Course', 0)`)
		return err
	}))
	assert.Equal(t, 1, count())
}
