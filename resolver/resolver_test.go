package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/depotfinder/cache"
	"github.com/marcus-crane/depotfinder/shared"
	"github.com/marcus-crane/depotfinder/steam"
	"github.com/marcus-crane/depotfinder/steamdb"
)

type fakeCatalog struct {
	apps       []steam.App
	depots     map[string][]steamdb.Depot
	searchErr  error
	depotsErr  error
	searches   int
	depotCalls []string
}

func (f *fakeCatalog) SearchApps(ctx context.Context, gameName string) ([]steam.App, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return steam.StripDuplicates(f.apps), nil
}

func (f *fakeCatalog) ListDepots(ctx context.Context, appID string) ([]steamdb.Depot, error) {
	f.depotCalls = append(f.depotCalls, appID)
	if f.depotsErr != nil {
		return nil, f.depotsErr
	}
	return f.depots[appID], nil
}

type failingStore struct {
	cache.Store
	getErr error
	putErr error
}

func (f failingStore) Get(gameName string) (cache.Entry, bool, error) {
	if f.getErr != nil {
		return cache.Entry{}, false, f.getErr
	}
	return f.Store.Get(gameName)
}

func (f failingStore) Put(gameName string, entry cache.Entry) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(gameName, entry)
}

func halfLifeCatalog() *fakeCatalog {
	return &fakeCatalog{
		apps: []steam.App{
			{Name: "Half-Life 2", AppID: "220"},
			{Name: "Half-Life", AppID: "70"},
		},
		depots: map[string][]steamdb.Depot{
			"220": {{ID: "221", Name: "Half-Life 2 Content"}},
		},
	}
}

func TestResolve_EndToEnd(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	catalog := halfLifeCatalog()
	r := New(store, catalog, Fixed(1, 1))

	got, err := r.Resolve(context.Background(), "half-life")
	require.NoError(t, err)

	assert.Equal(t, "220", got.AppID)
	assert.Equal(t, "Half-Life 2", got.AppName)
	assert.Equal(t, "221", got.DepotID)
	assert.Equal(t, "Half-Life 2 Content", got.DepotName)
	assert.False(t, got.FromCache)
	assert.Equal(t, []string{"220"}, catalog.depotCalls)

	wantPath := []State{StateCheckCache, StateSearchCatalog, StateSelectApp, StateListDepots, StateSelectDepot, StatePersist, StateDone}
	if !cmp.Equal(wantPath, got.Path) {
		t.Error(cmp.Diff(wantPath, got.Path))
	}

	all, err := store.All()
	require.NoError(t, err)
	want := map[string]cache.Entry{"half-life": {AppID: "220", DepotID: "221"}}
	if !cmp.Equal(want, all) {
		t.Error(cmp.Diff(want, all))
	}
}

func TestResolve_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put("half-life", cache.Entry{AppID: "70", DepotID: "1"}))
	catalog := halfLifeCatalog()
	r := New(store, catalog, Fixed())

	got, err := r.Resolve(context.Background(), "half-life")
	require.NoError(t, err)

	assert.True(t, got.FromCache)
	assert.Equal(t, "70", got.AppID)
	assert.Equal(t, "1", got.DepotID)
	assert.Zero(t, catalog.searches)
	assert.Empty(t, catalog.depotCalls)
	assert.Equal(t, []State{StateCheckCache, StateDone}, got.Path)
}

func TestResolve_CorruptCacheIsFatal(t *testing.T) {
	t.Parallel()
	corrupt := &cache.CorruptError{Path: "app_cache.json", Err: errors.New("unexpected end of JSON input")}
	store := failingStore{Store: cache.NewMemoryStore(), getErr: corrupt}
	catalog := halfLifeCatalog()
	r := New(store, catalog, Fixed(1, 1))

	_, err := r.Resolve(context.Background(), "half-life")
	assert.ErrorIs(t, err, cache.ErrCorrupt)
	assert.Zero(t, catalog.searches)
}

func TestResolve_NoMatchingApp(t *testing.T) {
	t.Parallel()
	catalog := &fakeCatalog{}
	r := New(cache.NewMemoryStore(), catalog, Fixed(1))

	got, err := r.Resolve(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNoMatch)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, ReasonNoMatchingApp, abortErr.Reason)
	assert.Equal(t, StateSearchCatalog, abortErr.AtState)
	assert.Equal(t, StateAborted, got.Path[len(got.Path)-1])
}

func TestResolve_NetworkErrorAborts(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	catalog := &fakeCatalog{searchErr: &shared.NetworkError{Op: "fetch app list", URL: "x", StatusCode: 502}}
	r := New(store, catalog, Fixed(1, 1))

	_, err := r.Resolve(context.Background(), "half-life")
	var netErr *shared.NetworkError
	assert.ErrorAs(t, err, &netErr)

	all, _ := store.All()
	assert.Empty(t, all)
}

func TestResolve_InvalidSelectionNeverClamps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		selection []int
		state     State
	}{
		{"app index zero", []int{0}, StateSelectApp},
		{"app index past end", []int{3}, StateSelectApp},
		{"app index negative", []int{-1}, StateSelectApp},
		{"depot index zero", []int{1, 0}, StateSelectDepot},
		{"depot index past end", []int{1, 2}, StateSelectDepot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewMemoryStore()
			r := New(store, halfLifeCatalog(), Fixed(tt.selection...))

			_, err := r.Resolve(context.Background(), "half-life")
			assert.ErrorIs(t, err, ErrInvalidSelection)

			var abortErr *AbortError
			require.ErrorAs(t, err, &abortErr)
			assert.Equal(t, ReasonInvalidSelection, abortErr.Reason)
			assert.Equal(t, tt.state, abortErr.AtState)

			all, _ := store.All()
			assert.Empty(t, all)
		})
	}
}

func TestResolve_UnreadableSelectionAborts(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	answers := 0
	selector := SelectorFunc(func(ctx context.Context, prompt string, options []string) (int, error) {
		answers++
		if answers == 1 {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, "first")
	})
	r := New(store, halfLifeCatalog(), selector)

	res, err := r.Resolve(context.Background(), "half-life")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, ReasonInvalidSelection, abortErr.Reason)
	assert.Equal(t, StateSelectDepot, abortErr.AtState)
	assert.Equal(t, `resolution aborted: invalid selection: "first" is not a number`, err.Error())
	assert.Equal(t, StateAborted, res.Path[len(res.Path)-1])

	all, _ := store.All()
	assert.Empty(t, all)
}

func TestResolve_SelectorFailureIsNotAnAbort(t *testing.T) {
	t.Parallel()
	selector := SelectorFunc(func(ctx context.Context, prompt string, options []string) (int, error) {
		return 0, io.ErrUnexpectedEOF
	})
	r := New(cache.NewMemoryStore(), halfLifeCatalog(), selector)

	_, err := r.Resolve(context.Background(), "half-life")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var abortErr *AbortError
	assert.False(t, errors.As(err, &abortErr))
}

func TestResolve_NoDepots(t *testing.T) {
	t.Parallel()
	catalog := halfLifeCatalog()
	r := New(cache.NewMemoryStore(), catalog, Fixed(2))

	_, err := r.Resolve(context.Background(), "half-life")
	assert.ErrorIs(t, err, ErrNoDepots)
	assert.Equal(t, []string{"70"}, catalog.depotCalls)
}

func TestResolve_PersistFailureStillResolves(t *testing.T) {
	t.Parallel()
	store := failingStore{Store: cache.NewMemoryStore(), putErr: errors.New("read-only file system")}
	r := New(store, halfLifeCatalog(), Fixed(1, 1))

	got, err := r.Resolve(context.Background(), "half-life")
	require.NoError(t, err)
	assert.Equal(t, "220", got.AppID)
	assert.Equal(t, "221", got.DepotID)
}

func TestResolve_DepotsRefetchedEveryMiss(t *testing.T) {
	t.Parallel()
	catalog := halfLifeCatalog()
	r := New(cache.NewMemoryStore(), catalog, Fixed(1, 1, 1, 1))

	_, err := r.Resolve(context.Background(), "Half-Life")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "half-life")
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.searches)
	assert.Equal(t, []string{"220", "220"}, catalog.depotCalls)
}

func TestResolve_FileCacheEndToEnd(t *testing.T) {
	t.Parallel()
	store := cache.NewFileStore(t.TempDir() + "/app_cache.json")
	r := New(store, halfLifeCatalog(), Fixed(1, 1))

	_, err := r.Resolve(context.Background(), "half-life")
	require.NoError(t, err)

	got, ok, err := store.Get("half-life")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cache.Entry{AppID: "220", DepotID: "221"}, got)
}

func TestFixed_RunsOut(t *testing.T) {
	t.Parallel()
	s := Fixed(2)
	idx, err := s.Select(context.Background(), "first", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = s.Select(context.Background(), "second", []string{"a"})
	assert.Error(t, err)
}
