package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrCorrupt = errors.New("cache is corrupt")

// Entry is the last resolution stored for a game name.
type Entry struct {
	AppID   string `json:"app_id" db:"app_id"`
	DepotID string `json:"depot_id" db:"depot_id"`
}

// Store persists resolutions keyed by the exact query string the user typed.
// Keys are never normalised, so "half-life" and "Half-Life" are separate entries.
type Store interface {
	Get(gameName string) (Entry, bool, error)
	Put(gameName string, entry Entry) error
	All() (map[string]Entry, error)
}

type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

// UnmarshalJSON accepts ids written as numbers, which is how older caches
// stored them.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		AppID   json.RawMessage `json:"app_id"`
		DepotID json.RawMessage `json:"depot_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	appID, err := idString(raw.AppID)
	if err != nil {
		return fmt.Errorf("app_id: %w", err)
	}
	depotID, err := idString(raw.DepotID)
	if err != nil {
		return fmt.Errorf("depot_id: %w", err)
	}
	e.AppID = appID
	e.DepotID = depotID
	return nil
}

func idString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", err
	}
	return n.String(), nil
}
