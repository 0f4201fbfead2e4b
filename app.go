package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"

	"github.com/marcus-crane/depotfinder/cache"
	"github.com/marcus-crane/depotfinder/config"
	"github.com/marcus-crane/depotfinder/credentials"
	"github.com/marcus-crane/depotfinder/depotdownloader"
	"github.com/marcus-crane/depotfinder/migrations"
	"github.com/marcus-crane/depotfinder/resolver"
	"github.com/marcus-crane/depotfinder/steam"
	"github.com/marcus-crane/depotfinder/steamdb"
)

// app holds everything the commands share. Fields left nil are built from
// cfg on first use.
type app struct {
	cfg    config.Config
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// progress shows a download meter for the Steam app list
	progress bool

	store    cache.Store
	closers  []func() error
	secrets  credentials.SecretStore
	prompter credentials.Prompter
	runner   *depotdownloader.Runner
}

func newApp(cfg config.Config, in io.Reader, out, errOut io.Writer) *app {
	return &app{
		cfg:    cfg,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Warn("Failed to close resource", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}

func (a *app) cacheStore() (cache.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, closeFn, err := openStore(a.cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closeFn)
	return store, nil
}

func openStore(cfg config.Config) (cache.Store, func() error, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendJSON, "":
		return cache.NewFileStore(cfg.Cache.Path), func() error { return nil }, nil
	case config.CacheBackendSqlite:
		store, err := cache.NewSqliteStore(cfg.Cache.DbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrate sqlite cache: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func (a *app) steamClient() *steam.Client {
	client := steam.NewClient(a.cfg)
	if a.progress {
		client.Progress = func(size int64) io.Writer {
			return newProgressBar(size, a.errOut)
		}
	}
	return client
}

func newProgressBar(size int64, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription("Fetching Steam app list"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (a *app) resolver() (*resolver.Resolver, error) {
	store, err := a.cacheStore()
	if err != nil {
		return nil, err
	}
	catalog := resolver.RemoteCatalog{
		Apps:   a.steamClient(),
		Depots: steamdb.NewClient(a.cfg),
	}
	return resolver.New(store, catalog, &tableSelector{In: a.in, Out: a.out}), nil
}

func (a *app) credentialManager() *credentials.Manager {
	secrets := a.secrets
	if secrets == nil {
		secrets = credentials.KeyringStore{Service: a.cfg.Credentials.KeyringService}
	}
	prompter := a.prompter
	if prompter == nil {
		tp := credentials.NewTerminalPrompter()
		tp.In = a.in
		tp.Out = a.out
		prompter = tp
	}
	return credentials.NewManager(secrets, prompter)
}

func (a *app) depotDownloader() *depotdownloader.Runner {
	if a.runner != nil {
		return a.runner
	}
	runner := depotdownloader.NewRunner(a.cfg)
	runner.Stdout = a.out
	return runner
}

// gameName takes the name from the command line or asks for it.
func (a *app) gameName(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	fmt.Fprint(a.out, "Enter the name of the game: ")
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	// The name is the cache key, so only the line ending is removed
	name := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(name) == "" {
		return "", errors.New("game name cannot be empty")
	}
	return name, nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
