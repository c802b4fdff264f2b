// Package app is the only place BridgeOS's constructors are called:
// config, store, repos, services, platform adapters, and the HTTP/bot
// runtimes are wired here exactly once, then handed to cmd/bot and
// cmd/webhook, mirroring the teacher's internal/app.New() shape.
package app

import (
	"fmt"
	"os"

	"github.com/bridgeos/bridgeos/internal/bot"
	"github.com/bridgeos/bridgeos/internal/config"
	bridgedb "github.com/bridgeos/bridgeos/internal/data/db"
	bridgehttp "github.com/bridgeos/bridgeos/internal/http"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// App holds every wired component; individual cmd/ entrypoints read only
// the fields they need (cmd/bot uses Cfg and Log, cmd/webhook uses Server).
type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	Store    *bridgedb.Service
	Repos    Repos
	Services Services
	Platform Platform
	Static   config.Static

	BotHandler *bot.Handler
	Server     *bridgehttp.Server
}

// New wires the entire dependency graph, shared by both process kinds.
// Each cmd/ entrypoint is responsible for only invoking the pieces it
// needs (a bot process never calls Server.Run; the webhook process never
// touches BotHandler).
func New() (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := config.Load(log)

	static, err := config.LoadStatic(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load static config: %w", err)
	}

	store, err := bridgedb.Open(cfg.DatabaseURL, bridgedb.DefaultPoolConfig(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	gdb := store.DB()
	if err := bridgedb.AutoMigrateAll(gdb); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := bridgedb.EnsurePartialIndexes(gdb); err != nil {
		log.Sync()
		return nil, fmt.Errorf("ensure partial indexes: %w", err)
	}
	if err := bridgedb.EnsureForeignKeys(gdb); err != nil {
		log.Sync()
		return nil, fmt.Errorf("ensure foreign keys: %w", err)
	}

	repos := wireRepos(gdb, log)

	platform, err := wirePlatform(cfg, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("wire platform adapters: %w", err)
	}

	services := wireServices(gdb, repos, platform, cfg, log)
	handlers := wireHandlers(cfg, services, log)
	auth := wireAuthMiddleware(cfg, log)
	server := wireRouter(handlers, auth)
	botHandler := wireBotHandler(services, platform, log)

	return &App{
		Log:        log,
		Cfg:        cfg,
		Store:      store,
		Repos:      repos,
		Services:   services,
		Platform:   platform,
		Static:     static,
		BotHandler: botHandler,
		Server:     server,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func envLogMode() string {
	if v := os.Getenv("LOG_MODE"); v != "" {
		return v
	}
	return "development"
}
