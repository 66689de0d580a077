package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/adapters/cache"
	"github.com/raksetu/bloodhub/internal/adapters/database"
	"github.com/raksetu/bloodhub/internal/adapters/events"
	"github.com/raksetu/bloodhub/internal/adapters/storage"
	"github.com/raksetu/bloodhub/internal/api/handlers"
	"github.com/raksetu/bloodhub/internal/api/middleware"
	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/redis"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	"github.com/raksetu/bloodhub/pkg/config"
	"github.com/raksetu/bloodhub/pkg/secrets"
)

// Stream-only server. It holds open the emergency streams so the API
// instances stay short lived; both sides share the Redis event bus.
func main() {
	if _, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-stream", cfg.Env, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting stream server")

	// Redis is required here: without it this process would never see
	// changes made through the API.
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)

	var emergencyRepo repositories.EmergencyRepository = database.NewEmergencyAdapter(pgClient)
	emergencyRepo = database.NewCachedEmergencyAdapter(emergencyRepo, cache.NewRedisAdapter(redisClient), cfg.Emergency.ActiveListCacheTTL)

	// The stream only reads; nothing is published from here.
	emergencyService := services.NewEmergencyService(emergencyRepo, nil, nil, services.EmergencyServiceConfig{
		RareBloodTypes:      entities.NewRaritySet(cfg.Emergency.RareBloodTypes),
		DefaultSearchRadius: cfg.Emergency.DefaultSearchRadius,
		NotificationWindow:  cfg.Emergency.NotificationWindow,
		BannerAnimation:     cfg.Emergency.BannerAnimation,
	})
	profileService := services.NewProfileService(
		database.NewIdentityAdapter(pgClient),
		database.NewProfileAdapter(pgClient),
		storage.Disabled{},
	)

	sseHandler := handlers.NewSSEHandler(eventBus, emergencyService, profileService)
	auth := middleware.AuthMiddleware(cfg.Auth)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
	mux.Handle("GET /api/emergencies/stream", auth(http.HandlerFunc(sseHandler.StreamEmergencies)))
	mux.HandleFunc("GET /api/stream/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connected_clients": %d}`, sseHandler.GetClientCount())
	})

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Stream server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Stream server failed")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Stream server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Stream server stopped")
}
