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
	"github.com/raksetu/bloodhub/internal/adapters/providers/connectivity"
	"github.com/raksetu/bloodhub/internal/adapters/storage"
	"github.com/raksetu/bloodhub/internal/api/handlers"
	"github.com/raksetu/bloodhub/internal/api/routes"
	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	minioclient "github.com/raksetu/bloodhub/internal/infrastructure/clients/minio"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/redis"
	"github.com/raksetu/bloodhub/internal/infrastructure/notifications"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	"github.com/raksetu/bloodhub/pkg/config"
	"github.com/raksetu/bloodhub/pkg/secrets"
)

func main() {
	vaultResult, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load secrets from Vault")
	}
	if vaultResult.Enabled {
		log.Info().Str("path", vaultResult.Path).Strs("loaded", vaultResult.Loaded).Strs("skipped", vaultResult.Skipped).Msg("Vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)

	// Set up context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis backs the cache, the response sessions and the event bus. Without
	// it a single instance keeps all three in process.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		cacheProvider = cache.NewMemoryAdapter(time.Minute)
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	var objectStorage providers.ObjectStorage = storage.Disabled{}
	minio, err := minioclient.NewClient(ctx, &cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("Object storage unavailable, profile photo uploads disabled")
	} else {
		objectStorage = storage.NewMinioAdapter(minio)
		log.Info().Str("bucket", minio.Bucket()).Msg("MinIO client initialized")
	}

	// Initialize adapters
	var emergencyRepo repositories.EmergencyRepository = database.NewEmergencyAdapter(pgClient)
	emergencyRepo = database.NewCachedEmergencyAdapter(emergencyRepo, cacheProvider, cfg.Emergency.ActiveListCacheTTL)
	profileRepo := database.NewProfileAdapter(pgClient)
	identityRepo := database.NewIdentityAdapter(pgClient)
	donationRepo := database.NewDonationAdapter(pgClient)

	// Initialize services
	emergencyService := services.NewEmergencyService(emergencyRepo, eventBus, metrics, services.EmergencyServiceConfig{
		RareBloodTypes:      entities.NewRaritySet(cfg.Emergency.RareBloodTypes),
		DefaultSearchRadius: cfg.Emergency.DefaultSearchRadius,
		NotificationWindow:  cfg.Emergency.NotificationWindow,
		BannerAnimation:     cfg.Emergency.BannerAnimation,
	})
	profileService := services.NewProfileService(identityRepo, profileRepo, objectStorage)
	donationService := services.NewDonationService(donationRepo, metrics)
	responseService := services.NewResponseService(services.ResponseServiceDeps{
		Emergencies:  emergencyService,
		Sessions:     services.NewResponseSessionStore(cacheProvider, cfg.Emergency.ResponseSessionTTL),
		Connectivity: connectivity.New(&cfg.Connectivity),
		Estimator:    services.NewPlaceholderEstimator(),
		SMS:          notifications.NewHTTPSMSSender(&cfg.SMS),
		Support:      services.NewCannedSupportChannel(cfg.Emergency.ChatReplyDelay, cfg.Emergency.ChatReplyText),
		Listeners:    []providers.DonationListener{donationService},
		Metrics:      metrics,
	})

	// Set up router
	router := routes.NewRouter(routes.Handlers{
		Emergency: handlers.NewEmergencyHandler(emergencyService, profileService),
		SSE:       handlers.NewSSEHandler(eventBus, emergencyService, profileService),
		Response:  handlers.NewResponseHandler(responseService, profileService),
		Profile:   handlers.NewProfileHandler(profileService),
		Donation:  handlers.NewDonationHandler(donationService),
	}, cfg.Auth, cfg.Server.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: the emergency stream is long lived
		IdleTimeout: 60 * time.Second,
		// Streams end when the signal context is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Bool("auth_dev_mode", cfg.Auth.DevMode).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
