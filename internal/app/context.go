package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/myanmatch/backend/internal/cache"
	"github.com/myanmatch/backend/internal/mail"
	"github.com/myanmatch/backend/internal/media"
)

// AppContext holds shared dependencies (DB, Redis, Logger, media, mail).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Media      *media.Resolver
	Mailer     *mail.Mailer
	SMS        *mail.SMSSender
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}
