package cmd

import (
	"context"
	"fmt"
	"time"

	"celestia/application"
	"celestia/config"
	"celestia/database"
	"celestia/domain/pricing"
	"celestia/events"
	"celestia/httpapi"
	"celestia/infrastructure"
	"celestia/infrastructure/announcer"
	"celestia/infrastructure/observability"
	"celestia/infrastructure/session"
	"celestia/infrastructure/verification"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.WithField("environment", cfg.Environment).Info("Starting celestia...")

	// Metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Database
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db.LockTimeout = cfg.DBLockTimeout
	log.Info("Database connection established successfully")

	// Event publishing: local handlers always, NATS when configured
	var natsClient *infrastructure.NATSClient
	var publisher *infrastructure.NATSEventPublisher
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := publisher.EnsureEventStream(); err != nil {
			log.WithError(err).Warn("Failed to ensure JetStream stream")
		}
	} else {
		log.Info("NATS_SERVERS not set, events are delivered to local handlers only")
		publisher = infrastructure.NewNATSEventPublisher(nil, infrastructure.NewEventSubjectMapper())
	}
	publisher.WithMetrics(metrics)

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)

	var discordAnnouncer *announcer.DiscordAnnouncer
	if cfg.AnnouncerEnabled() {
		discordAnnouncer, err = announcer.NewDiscordAnnouncer(cfg.DiscordWebhookID, cfg.DiscordWebhookToken, cfg.AnnounceMinStake)
		if err != nil {
			log.WithError(err).Warn("Discord announcer disabled")
			discordAnnouncer = nil
		} else {
			uowFactory.RegisterLocalHandler(events.EventTypeGamePlayed, discordAnnouncer.HandleGamePlayed)
			log.Info("Discord announcer enabled")
		}
	}

	// Sessions
	var revocations session.RevocationStore
	if cfg.RedisURL != "" {
		redisClient, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return err
		}
		defer redisClient.Close()
		revocations = session.NewRedisRevocationStore(redisClient)
		log.Info("Session revocations stored in Redis")
	}
	sessions := session.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, revocations)

	// Application services
	engine := pricing.NewEngine(pricing.DefaultParams())
	exchange := application.NewTokenExchange(uowFactory, engine, time.Now, metrics)
	gameTable := application.NewGameTable(uowFactory, engine, nil, time.Now, metrics)
	accounts := application.NewAccountQueries(uowFactory)
	onboarding := application.NewOnboarding(
		uowFactory,
		verification.NewNELFClient(cfg.VerificationBaseURL, cfg.VerificationTimeout),
		sessions,
	)

	server := httpapi.NewServer(exchange, gameTable, accounts, onboarding)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(cfg.HTTPAddr)
	}()

	log.WithField("addr", cfg.HTTPAddr).Infof("Celestia is running in %s mode", cfg.Environment)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	if discordAnnouncer != nil {
		discordAnnouncer.Wait()
	}

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return runErr
}
