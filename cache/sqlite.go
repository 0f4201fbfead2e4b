package cache

import (
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB     *sqlx.DB
	Logger *slog.Logger
}

type resolutionRow struct {
	GameName string `db:"game_name"`
	AppID    string `db:"app_id"`
	DepotID  string `db:"depot_id"`
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &SqliteStore{
		DB:     db,
		Logger: slog.Default(),
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func (s *SqliteStore) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *SqliteStore) Get(gameName string) (Entry, bool, error) {
	var entry Entry
	err := s.DB.Get(&entry, "SELECT app_id, depot_id FROM resolutions WHERE game_name = ?", gameName)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SqliteStore) Put(gameName string, entry Entry) error {
	_, err := s.DB.Exec(
		"INSERT INTO resolutions (game_name, app_id, depot_id, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(game_name) DO UPDATE SET app_id = excluded.app_id, depot_id = excluded.depot_id, updated_at = excluded.updated_at",
		gameName,
		entry.AppID,
		entry.DepotID,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	s.logger().Debug("Cached app and depot",
		slog.String("game", gameName),
		slog.String("app_id", entry.AppID),
		slog.String("depot_id", entry.DepotID),
	)
	return nil
}

func (s *SqliteStore) All() (map[string]Entry, error) {
	rows := []resolutionRow{}
	if err := s.DB.Select(&rows, "SELECT game_name, app_id, depot_id FROM resolutions ORDER BY game_name"); err != nil {
		return nil, err
	}
	entries := make(map[string]Entry, len(rows))
	for _, r := range rows {
		entries[r.GameName] = Entry{AppID: r.AppID, DepotID: r.DepotID}
	}
	return entries, nil
}
