package cache

import (
	"maps"
	"sync"
)

type MemoryStore struct {
	m    *sync.Mutex
	data map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    new(sync.Mutex),
		data: map[string]Entry{},
	}
}

func (ms *MemoryStore) Get(gameName string) (Entry, bool, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	entry, ok := ms.data[gameName]
	return entry, ok, nil
}

func (ms *MemoryStore) Put(gameName string, entry Entry) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.data[gameName] = entry
	return nil
}

func (ms *MemoryStore) All() (map[string]Entry, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	return maps.Clone(ms.data), nil
}
