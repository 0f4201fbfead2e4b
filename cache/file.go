package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every resolution in a single JSON object on disk. The whole
// file is rewritten on each Put.
type FileStore struct {
	Path   string
	Logger *slog.Logger
	m      sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		Path:   path,
		Logger: slog.Default(),
	}
}

func (s *FileStore) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *FileStore) load() (map[string]Entry, error) {
	entries := map[string]Entry{}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptError{Path: s.Path, Err: err}
	}
	if entries == nil {
		// a file containing just "null"
		entries = map[string]Entry{}
	}
	return entries, nil
}

func (s *FileStore) Get(gameName string) (Entry, bool, error) {
	s.m.Lock()
	defer s.m.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok := entries[gameName]
	if ok {
		s.logger().Debug("Loaded cached app and depot",
			slog.String("game", gameName),
			slog.String("app_id", entry.AppID),
			slog.String("depot_id", entry.DepotID),
		)
	}
	return entry, ok, nil
}

func (s *FileStore) Put(gameName string, entry Entry) error {
	s.m.Lock()
	defer s.m.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[gameName] = entry

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	if err := writeFile(s.Path, data); err != nil {
		return err
	}
	s.logger().Debug("Cached app and depot",
		slog.String("game", gameName),
		slog.String("app_id", entry.AppID),
		slog.String("depot_id", entry.DepotID),
	)
	return nil
}

func (s *FileStore) All() (map[string]Entry, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.load()
}

// writeFile writes to a sibling temp file and renames it over the target so
// readers never see a half written object.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
