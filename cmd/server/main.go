package main

import (
	"context"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/cache"
	"github.com/oduya/pendo/internal/config"
	"github.com/oduya/pendo/internal/db"
	"github.com/oduya/pendo/internal/logger"
	"github.com/oduya/pendo/internal/realtime"
	"github.com/oduya/pendo/internal/server"
	"github.com/oduya/pendo/internal/service/admin"
	"github.com/oduya/pendo/internal/service/chat"
	"github.com/oduya/pendo/internal/service/match"
	"github.com/oduya/pendo/internal/service/profile"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Realtime fan-out hub
	hub := realtime.NewHub()

	// Inject dependencies into app context
	appCtx := app.New(database, redisCache, hub, log)

	registrars := []server.Registrar{
		profile.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
		admin.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
