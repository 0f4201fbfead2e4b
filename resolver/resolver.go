package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus-crane/depotfinder/cache"
	"github.com/marcus-crane/depotfinder/steam"
	"github.com/marcus-crane/depotfinder/steamdb"
)

type State string

const (
	StateCheckCache    State = "CHECK_CACHE"
	StateSearchCatalog State = "SEARCH_CATALOG"
	StateSelectApp     State = "SELECT_APP"
	StateListDepots    State = "LIST_DEPOTS"
	StateSelectDepot   State = "SELECT_DEPOT"
	StatePersist       State = "PERSIST"
	StateDone          State = "DONE"
	StateAborted       State = "ABORTED"
)

type Catalog interface {
	SearchApps(ctx context.Context, gameName string) ([]steam.App, error)
	ListDepots(ctx context.Context, appID string) ([]steamdb.Depot, error)
}

// RemoteCatalog joins the Steam app list with SteamDB depot pages.
type RemoteCatalog struct {
	Apps   *steam.Client
	Depots *steamdb.Client
}

func (rc RemoteCatalog) SearchApps(ctx context.Context, gameName string) ([]steam.App, error) {
	return rc.Apps.SearchApps(ctx, gameName)
}

func (rc RemoteCatalog) ListDepots(ctx context.Context, appID string) ([]steamdb.Depot, error) {
	return rc.Depots.ListDepots(ctx, appID)
}

type Result struct {
	GameName  string
	AppID     string
	AppName   string
	DepotID   string
	DepotName string
	FromCache bool
	// Path lists every state the resolution passed through, ending in DONE
	Path []State
}

type Resolver struct {
	Cache    cache.Store
	Catalog  Catalog
	Selector Selector
	Logger   *slog.Logger
}

func New(store cache.Store, catalog Catalog, selector Selector) *Resolver {
	return &Resolver{
		Cache:    store,
		Catalog:  catalog,
		Selector: selector,
		Logger:   slog.Default(),
	}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Resolve turns a game name into an app and depot id. A cached answer always
// wins over the network, so stale entries are never refreshed here.
func (r *Resolver) Resolve(ctx context.Context, gameName string) (Result, error) {
	res := Result{GameName: gameName}
	log := r.logger().With(slog.String("game", gameName))

	res.Path = append(res.Path, StateCheckCache)
	entry, ok, err := r.Cache.Get(gameName)
	if err != nil {
		log.Error("Failed to read resolution cache", slog.String("error", err.Error()))
		res.Path = append(res.Path, StateAborted)
		return res, err
	}
	if ok {
		log.Info("Using cached app and depot",
			slog.String("app_id", entry.AppID),
			slog.String("depot_id", entry.DepotID),
		)
		res.AppID = entry.AppID
		res.DepotID = entry.DepotID
		res.FromCache = true
		res.Path = append(res.Path, StateDone)
		return res, nil
	}

	res.Path = append(res.Path, StateSearchCatalog)
	apps, err := r.Catalog.SearchApps(ctx, gameName)
	if err != nil {
		log.Error("Failed to search catalog", slog.String("error", err.Error()))
		res.Path = append(res.Path, StateAborted)
		return res, fmt.Errorf("search apps: %w", err)
	}
	if len(apps) == 0 {
		log.Info("No matching apps found")
		res.Path = append(res.Path, StateAborted)
		return res, abort(StateSearchCatalog, ReasonNoMatchingApp, ErrNoMatch, gameName)
	}

	res.Path = append(res.Path, StateSelectApp)
	appOptions := make([]string, len(apps))
	for i, app := range apps {
		appOptions[i] = fmt.Sprintf("%s (App ID: %s)", app.Name, app.AppID)
	}
	appIdx, err := r.choose(ctx, StateSelectApp, fmt.Sprintf("Found %d matching apps for '%s'", len(apps), gameName), appOptions)
	if err != nil {
		res.Path = append(res.Path, StateAborted)
		return res, err
	}
	app := apps[appIdx-1]
	res.AppID = app.AppID
	res.AppName = app.Name

	res.Path = append(res.Path, StateListDepots)
	depots, err := r.Catalog.ListDepots(ctx, app.AppID)
	if err != nil {
		log.Error("Failed to list depots",
			slog.String("error", err.Error()),
			slog.String("app_id", app.AppID),
		)
		res.Path = append(res.Path, StateAborted)
		return res, fmt.Errorf("list depots: %w", err)
	}
	if len(depots) == 0 {
		log.Info("No depots found", slog.String("app_id", app.AppID))
		res.Path = append(res.Path, StateAborted)
		return res, abort(StateListDepots, ReasonNoDepots, ErrNoDepots, "app "+app.AppID)
	}

	res.Path = append(res.Path, StateSelectDepot)
	depotOptions := make([]string, len(depots))
	for i, d := range depots {
		depotOptions[i] = fmt.Sprintf("Depot ID: %s, Name: %s", d.ID, d.Name)
	}
	depotIdx, err := r.choose(ctx, StateSelectDepot, fmt.Sprintf("Found %d depots", len(depots)), depotOptions)
	if err != nil {
		res.Path = append(res.Path, StateAborted)
		return res, err
	}
	depot := depots[depotIdx-1]
	res.DepotID = depot.ID
	res.DepotName = depot.Name

	res.Path = append(res.Path, StatePersist)
	if err := r.Cache.Put(gameName, cache.Entry{AppID: res.AppID, DepotID: res.DepotID}); err != nil {
		// The ids are still good even if we couldn't remember them
		log.Warn("Failed to cache resolution", slog.String("error", err.Error()))
	}

	res.Path = append(res.Path, StateDone)
	log.Info("Resolved app and depot",
		slog.String("app_id", res.AppID),
		slog.String("depot_id", res.DepotID),
	)
	return res, nil
}

func (r *Resolver) choose(ctx context.Context, state State, prompt string, options []string) (int, error) {
	idx, err := r.Selector.Select(ctx, prompt, options)
	if errors.Is(err, ErrInvalidSelection) {
		return 0, abort(state, ReasonInvalidSelection, err, "")
	}
	if err != nil {
		return 0, fmt.Errorf("select: %w", err)
	}
	if idx < 1 || idx > len(options) {
		return 0, abort(state, ReasonInvalidSelection, ErrInvalidSelection,
			fmt.Sprintf("%d is outside 1-%d", idx, len(options)))
	}
	return idx, nil
}
