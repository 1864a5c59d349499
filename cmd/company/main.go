package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/olt/internal/company/config"
	"github.com/gartstein/olt/internal/company/controller"
	"github.com/gartstein/olt/internal/company/db"
	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/events"
	"github.com/gartstein/olt/internal/company/handlers"
	"github.com/gartstein/olt/internal/company/settings"
	"go.uber.org/zap"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := config.Load(filepath.Join("internal", "company", "config", "config.yaml"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectWithRetry(initDatabase(cfg), cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer closeWithLog(logger, "company database", repo.Close)

	snapshots, err := db.NewSnapshotRepository(cfg.SettingsPath)
	if err != nil {
		logger.Fatal("failed to open settings storage", zap.Error(err))
	}
	defer closeWithLog(logger, "settings storage", snapshots.Close)

	ctx := context.Background()
	store, err := settings.NewStore(ctx, snapshots,
		settings.WithNamespace(cfg.SettingsNamespace),
		settings.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to load settings", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("failed to flush settings", zap.Error(err))
		}
	}()

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic, cfg.SettingsNamespace)
		if err != nil {
			logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		store.Subscribe(producer.Produce)
	}

	infoSvc := controller.NewCompanyInfoService(repo, cfg.BaseURLEnv, logger)
	settingsHandler := handlers.NewSettingsHandler(infoSvc, store, logger)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPGateway(settingsHandler, cfg.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initDatabase maps the service configuration onto the repository configuration.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

// connectWithRetry opens the company database, retrying with exponential
// backoff while it comes up. Queries themselves are never retried.
func connectWithRetry(dbConf *db.Config, timeout time.Duration, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = timeout

	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(dbConf)
		if errors.Is(err, e.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Error(err),
			zap.Duration("next_attempt_in", next),
		)
	})
	return repo, err
}

func closeWithLog(logger *zap.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("failed to close "+name, zap.Error(err))
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
