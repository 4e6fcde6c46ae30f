package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/cache"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/database"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/handlers"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/jobs"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/log"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/secrets"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/server"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	// Secret provisioning is a startup barrier: it completes (or aborts the
	// process) before any request-serving component initializes.
	if err := provisionSecrets(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("secret provisioning failed")
	}
	if cfg.Session.Secret == "" {
		logger.Warn().Msg("running without a session secret; signed cookies will not survive restarts")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	store, pruner := buildSessionStore(cfg, dbPool, redisClient)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, store, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(pruner, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func provisionSecrets(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) error {
	mode := secrets.ModeFor(cfg.Environment, cfg.Secrets.ProjectID)

	var source secrets.Source
	if mode == secrets.ModeProduction {
		googleSource, err := secrets.NewGoogleSource(ctx)
		if err != nil {
			return err
		}
		defer googleSource.Close()
		source = googleSource
	}

	bundle, err := secrets.NewProvisioner(mode, cfg.Secrets.ProjectID, source, logger).Load(ctx)
	if err != nil {
		return err
	}

	// Fetched values win over whatever the environment already carried.
	if bundle.SessionSecret != "" {
		cfg.Session.Secret = bundle.SessionSecret
	}
	if bundle.SendgridAPIKey != "" {
		cfg.Mail.SendgridAPIKey = bundle.SendgridAPIKey
	}
	if bundle.SendgridFrom != "" {
		cfg.Mail.From = bundle.SendgridFrom
	}
	if bundle.TwilioAccountSID != "" {
		cfg.SMS.TwilioAccountSID = bundle.TwilioAccountSID
	}
	if bundle.TwilioAuthToken != "" {
		cfg.SMS.TwilioAuthToken = bundle.TwilioAuthToken
	}
	if bundle.TwilioPhoneNumber != "" {
		cfg.SMS.TwilioPhoneNumber = bundle.TwilioPhoneNumber
	}
	return nil
}

// buildSessionStore selects the configured backend. Only the relational
// backend needs an expiry sweep; redis documents expire on their own.
func buildSessionStore(cfg *config.AppConfig, dbPool *pgxpool.Pool, redisClient *redis.Client) (session.Store, jobs.SessionPruner) {
	if cfg.Session.Backend == config.SessionBackendPostgres {
		store := session.NewPostgresStore(dbPool, cfg.Session.TableName, cfg.Session.MaxAge)
		return store, store
	}
	return session.NewRedisStore(redisClient, cfg.Session.Collection, cfg.Session.MaxAge), nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
