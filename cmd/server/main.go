package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheetpos/internal/config"
	"sheetpos/internal/infra"
	"sheetpos/internal/router"
	"sheetpos/internal/schema"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	registry, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SchemaFile).Msg("failed to load sheet schema")
	}

	cb := infra.NewCircuitBreaker("sheets", infra.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		OpenTimeout:      cfg.CBOpenTimeout(),
	})
	client := infra.NewSheetsClient(cfg.SheetsAPIURL, cfg.SheetsAPIKey, cfg.SheetsTimeout(), cb)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set: sessions are in-memory and audit rows are written inline")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := router.New(cfg, client, registry, rdb)
	if app.Pool != nil {
		app.Pool.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("sheets_api", cfg.SheetsAPIURL).Msgf("sheetpos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Let in-flight audit jobs finish before Redis is closed.
	cancel()
	if app.Pool != nil {
		app.Pool.Wait()
	}
	log.Info().Msg("server exited")
}
