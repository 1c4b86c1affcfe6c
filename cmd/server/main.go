package main

import (
	"context"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/cache"
	"github.com/myanmatch/backend/internal/config"
	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/logger"
	"github.com/myanmatch/backend/internal/mail"
	"github.com/myanmatch/backend/internal/media"
	"github.com/myanmatch/backend/internal/server"
	authsvc "github.com/myanmatch/backend/internal/service/auth"
	billingsvc "github.com/myanmatch/backend/internal/service/billing"
	matchsvc "github.com/myanmatch/backend/internal/service/match"
	prefssvc "github.com/myanmatch/backend/internal/service/prefs"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

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

	appCtx := app.New(database, redisCache, log)

	// Object storage for avatar/media resolution
	if storage, err := media.NewS3Storage(cfg); err != nil {
		log.Warn("object storage unavailable, avatars degrade to placeholders", "err", err)
	} else {
		if err := storage.EnsureBucket(context.Background()); err != nil {
			// public URL building still works; only presigning needs the live bucket
			log.Warn("media bucket check failed", "err", err)
		}
		appCtx.Media = media.NewResolver(storage, cfg.Storage.SignedURLTTL)
	}

	// OTP delivery channels
	if mailer, err := mail.NewMailer(cfg); err != nil {
		log.Warn("mail relay not configured, password reset disabled", "err", err)
	} else {
		appCtx.Mailer = mailer
	}
	if sms, err := mail.NewSMSSender(cfg); err != nil {
		log.Warn("sms provider not configured, otp delivery degrades to email only", "err", err)
	} else {
		appCtx.SMS = sms
	}

	registrars := []server.Registrar{
		matchsvc.NewRegistrar(appCtx),
		billingsvc.NewRegistrar(appCtx, cfg),
		prefssvc.NewRegistrar(appCtx),
		authsvc.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting API server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start API server", "err", err)
	}
}
