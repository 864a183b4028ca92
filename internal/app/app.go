package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/config"
	"github.com/saadjs/gonext/internal/db"
	"github.com/saadjs/gonext/internal/geo"
	"github.com/saadjs/gonext/internal/logger"
	"github.com/saadjs/gonext/internal/provider/geoapify"
	"github.com/saadjs/gonext/internal/service"
	"github.com/saadjs/gonext/internal/storage/sqlite"
)

// Options carry command-line overrides. Empty fields fall back to config,
// env and default paths.
type Options struct {
	DBPath     string
	ConfigPath string
	APIKey     string
}

// App wires the stores over one SQLite database.
type App struct {
	Config     *config.Config
	ConfigPath string
	DBPath     string
	Log        *zap.Logger

	DB        *sql.DB
	Store     *sqlite.Store
	Places    *service.PlaceFinder
	Favorites *service.FavoritesStore
	Events    *service.EventStore
	Sessions  *service.SessionStore
}

// Open loads configuration, migrates the database and restores every store.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		cfg.Geoapify.APIKey = key
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}
	if err := EnsureDBDir(dbPath); err != nil {
		return nil, err
	}
	sqldb, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		sqldb.Close()
		return nil, err
	}

	log := logger.New(cfg.Env)
	store := sqlite.New(sqldb)
	a := &App{
		Config:     cfg,
		ConfigPath: cfgPath,
		DBPath:     dbPath,
		Log:        log,
		DB:         sqldb,
		Store:      store,
		Places: service.NewPlaceFinder(&geoapify.Client{
			APIKey:  cfg.Geoapify.APIKey,
			BaseURL: cfg.Geoapify.BaseURL,
		}, log),
		Favorites: service.NewFavoritesStore(store, log),
		Events:    service.NewEventStore(store, log, service.WithNotificationTTL(cfg.NotificationTTL)),
		Sessions:  service.NewSessionStore(store, log),
	}
	if err := a.load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) load(ctx context.Context) error {
	if err := a.Favorites.Load(ctx); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if err := a.Events.Load(ctx); err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if err := a.Sessions.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

// Home returns the configured home coordinates, or nil.
func (a *App) Home() *geo.Point {
	if !a.Config.HasHome() {
		return nil
	}
	return &geo.Point{Lat: *a.Config.Home.Lat, Lon: *a.Config.Home.Lon}
}

func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}
