package cache

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/depotfinder/migrations"
)

func fakeSqliteStore(t *testing.T) (*SqliteStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return &SqliteStore{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestSqliteStore_GetHit(t *testing.T) {
	t.Parallel()
	s, mock := fakeSqliteStore(t)
	rows := sqlmock.NewRows([]string{"app_id", "depot_id"}).AddRow("220", "221")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT app_id, depot_id FROM resolutions WHERE game_name = ?")).
		WithArgs("half-life").
		WillReturnRows(rows)

	got, ok, err := s.Get("half-life")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Entry{AppID: "220", DepotID: "221"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqliteStore_GetMiss(t *testing.T) {
	t.Parallel()
	s, mock := fakeSqliteStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT app_id, depot_id FROM resolutions WHERE game_name = ?")).
		WithArgs("portal").
		WillReturnRows(sqlmock.NewRows([]string{"app_id", "depot_id"}))

	_, ok, err := s.Get("portal")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSqliteStore_PutUpserts(t *testing.T) {
	t.Parallel()
	s, mock := fakeSqliteStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resolutions (game_name, app_id, depot_id, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(game_name) DO UPDATE")).
		WithArgs("half-life", "220", "221", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Put("half-life", Entry{AppID: "220", DepotID: "221"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqliteStore_PutLogsToDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})

	s, mock := fakeSqliteStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resolutions")).
		WithArgs("half-life", "220", "221", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Put("half-life", Entry{AppID: "220", DepotID: "221"}))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `msg="Cached app and depot" game=half-life app_id=220 depot_id=221`)
}

func TestSqliteStore_MigratedRoundTrip(t *testing.T) {
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "app_cache.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.ApplyMigrations(migrations.GetMigrations()))

	require.NoError(t, s.Put("half-life", Entry{AppID: "70", DepotID: "1"}))
	require.NoError(t, s.Put("portal", Entry{AppID: "400", DepotID: "401"}))
	require.NoError(t, s.Put("half-life", Entry{AppID: "220", DepotID: "221"}))

	got, ok, err := s.Get("half-life")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Entry{AppID: "220", DepotID: "221"}, got)

	all, err := s.All()
	require.NoError(t, err)
	want := map[string]Entry{
		"half-life": {AppID: "220", DepotID: "221"},
		"portal":    {AppID: "400", DepotID: "401"},
	}
	if !cmp.Equal(want, all) {
		t.Error(cmp.Diff(want, all))
	}
}
