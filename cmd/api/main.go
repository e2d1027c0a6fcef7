package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shotcraft/internal/history"
	"shotcraft/internal/http/handlers"
	httpapi "shotcraft/internal/http/httpapi"
	"shotcraft/internal/infra"
	"shotcraft/internal/infra/geoip"
	"shotcraft/internal/middleware"
	"shotcraft/internal/providers/image"
	"shotcraft/internal/studio"
	"shotcraft/internal/upload"
	"shotcraft/internal/web"
)

const sweepInterval = time.Minute

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := image.NewGeminiGenerator(ctx, image.GeminiOptions{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}

	// Attempt history is optional; without a database attempts are only logged.
	var recorder history.Recorder = history.NopRecorder{}
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		pg := history.NewPGRecorder(infra.NewSQLRunner(pool, logger))
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare attempt history schema")
		}
		recorder = pg
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, locale falls back to headers")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	sessions := studio.NewStore(studio.Deps{
		Collector: upload.NewCollector(cfg.MaxImageBytes, logger),
		Generator: generator,
		Recorder:  recorder,
		Logger:    &logger,
	})
	go sessions.RunSweeper(ctx, sweepInterval, cfg.SessionIdleTimeout)

	pages, err := web.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse page templates")
	}

	app := handlers.NewApp(handlers.Options{
		Sessions:       sessions,
		History:        recorder,
		Pages:          pages,
		Logger:         &logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Model:          generator.Model(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  lookup,
		SecureCookies:  cfg.AppEnv == "production",
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", generator.Model()).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
