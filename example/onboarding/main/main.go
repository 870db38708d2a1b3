package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/sicko7947/multipageform"
	"github.com/sicko7947/multipageform/example/onboarding"
	"github.com/sicko7947/multipageform/store"
	"github.com/sicko7947/multipageform/tempdata"
)

// serverConfig holds the settings that only the example host needs
type serverConfig struct {
	Addr          string `env:"ONBOARDING_ADDR" envDefault:":3000"`
	CookieHashKey string `env:"ONBOARDING_COOKIE_HASH_KEY"`
	CookieSecure  bool   `env:"ONBOARDING_COOKIE_SECURE" envDefault:"false"`
}

func main() {
	cfg, err := multipageform.LoadConfig(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse server config")
	}

	logger := cfg.Logger()
	log.Logger = logger

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	formStore, err := store.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend()).Msg("Failed to open form data store")
	}
	defer formStore.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := multipageform.NewService(formStore,
		multipageform.WithLogger(logger),
		multipageform.WithMetrics(multipageform.NewMetrics(registry)),
	)
	orchestrator := onboarding.NewOrchestrator(svc, logger)

	hashKey := []byte(srvCfg.CookieHashKey)
	if len(hashKey) == 0 {
		log.Warn().Msg("ONBOARDING_COOKIE_HASH_KEY not set, using a random key; temp data will not survive restarts")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	codec := tempdata.NewCookieCodec(hashKey, nil, tempdata.WithSecure(srvCfg.CookieSecure))

	app := fiber.New()

	// Health check endpoint
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "multipageform-onboarding",
			"backend": svc.Backend(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1", tempdata.Middleware(codec))
	onboarding.RegisterRoutes(api, orchestrator)

	// Start server in a goroutine
	go func() {
		log.Info().Str("address", srvCfg.Addr).Msg("Starting HTTP server")
		if err := app.Listen(srvCfg.Addr); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
