package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/joho/godotenv"

	"github.com/marcus-crane/depotfinder/shared"
	"github.com/marcus-crane/depotfinder/utils"
)

type Config struct {
	Cache           CacheConfig
	Credentials     CredentialsConfig
	DepotDownloader DepotDownloaderConfig
	Logging         LoggingConfig
	Steam           SteamConfig
	SteamDB         SteamDBConfig
}

type CacheConfig struct {
	Backend string `env:"CACHE_BACKEND"`
	Path    string `env:"CACHE_PATH"`
	DbPath  string `env:"CACHE_DB_PATH"`
}

type CredentialsConfig struct {
	KeyringService string `env:"KEYRING_SERVICE"`
}

type DepotDownloaderConfig struct {
	Path string `env:"DEPOT_DOWNLOADER_PATH"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL"`
	File  string `env:"LOG_FILE"`
}

type SteamConfig struct {
	APIURL         string `env:"STEAM_API_URL"`
	TimeoutSeconds int    `env:"HTTP_TIMEOUT_SECONDS"`
}

type SteamDBConfig struct {
	URL                   string `env:"STEAMDB_URL"`
	BrowserTimeoutSeconds int    `env:"BROWSER_TIMEOUT_SECONDS"`
}

const (
	CacheBackendJSON   = "json"
	CacheBackendSqlite = "sqlite"
)

func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend: CacheBackendJSON,
			Path:    shared.DEFAULT_CACHE_FILE,
			DbPath:  shared.DEFAULT_CACHE_DB,
		},
		Credentials: CredentialsConfig{
			KeyringService: shared.DEFAULT_KEYRING,
		},
		DepotDownloader: DepotDownloaderConfig{
			Path: defaultDepotDownloaderPath(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Steam: SteamConfig{
			APIURL:         shared.DEFAULT_STEAM_API_URL,
			TimeoutSeconds: 60,
		},
		SteamDB: SteamDBConfig{
			URL:                   shared.DEFAULT_STEAMDB_URL,
			BrowserTimeoutSeconds: 30,
		},
	}
}

// Load starts from Default and overlays anything set in the environment or in
// an optional .env file in the working directory.
func Load() (Config, error) {
	cfg := Default()

	// A missing .env file is normal
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", slog.String("error", err.Error()))
	}

	if err := config.New().AddFeeder(feeder.Env{}).AddStruct(&cfg).Feed(); err != nil {
		return cfg, err
	}

	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	return cfg, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	if c.Steam.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Steam.TimeoutSeconds) * time.Second
}

func (c *Config) BrowserTimeout() time.Duration {
	if c.SteamDB.BrowserTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SteamDB.BrowserTimeoutSeconds) * time.Second
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Logging.Level)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" || logLevel == "warn" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}

func defaultDepotDownloaderPath() string {
	return filepath.Join(utils.ExecutableDir(), "DepotDownloader")
}
