package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-access-gate/internal/cache"
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/handler"
	myHTTP "github.com/MKhiriev/go-access-gate/internal/handler/http"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/internal/server"
	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/internal/session"
	"github.com/MKhiriev/go-access-gate/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("gate-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error running migrations")
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Storage.Cache, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to redis")
	}
	defer redisCache.Close()

	storages := store.NewStorages(db, log)
	services := service.NewServices(storages, *cfg, nil, log)
	sessions := session.NewManager(redisCache, cfg.Auth.SessionTTL, log)
	limiter := ratelimit.NewLimiter(cfg.RateLimit, redisCache, log)

	health := myHTTP.HealthChecks{
		Database: db.PingContext,
		Cache:    redisCache.Ping,
	}

	handlers, err := handler.NewHandlers(services, sessions, limiter, cfg, health, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
