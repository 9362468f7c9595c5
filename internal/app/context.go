package app

import (
	"log/slog"

	"github.com/oduya/pendo/internal/cache"
	"github.com/oduya/pendo/internal/realtime"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, realtime hub, Logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Hub        *realtime.Hub
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, hub *realtime.Hub, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Hub:        hub,
		Logger:     logger,
	}
}
