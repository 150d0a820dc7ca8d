package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"granbokning/internal/api"
	"granbokning/internal/config"
	"granbokning/internal/database"
	"granbokning/internal/domain"
	"granbokning/internal/events"
	"granbokning/internal/intake"
	"granbokning/internal/logging"
	"granbokning/internal/metrics"
	"granbokning/internal/models"
	"granbokning/internal/notifier"
	"granbokning/internal/repository"
	"granbokning/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	dates, err := loadPickupDates(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	state := initState(cfg, &logger)

	eventBus := events.NewEventBus()

	validator := intake.NewValidator(dates, cfg.Notifications.Enabled)
	bookingService := service.NewBookingService(db, eventBus, validator, &logger)
	adminService := service.NewAdminService(
		db, state, eventBus,
		cfg.Admin.Password,
		time.Duration(cfg.Admin.SessionTTLHours)*time.Hour,
		&logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startNotifier(ctx, cfg, eventBus, &logger)
	startMetrics(ctx, cfg, &logger)

	server := api.NewServer(cfg.Server, bookingService, adminService, state, db, dates, &logger)
	return serve(ctx, server, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

// loadPickupDates reads the offered date set from a standalone yaml file when
// DATES_PATH points at one, falling back to the dates embedded in the config.
func loadPickupDates(cfg *config.Config, logger *zerolog.Logger) ([]models.PickupDate, error) {
	datesPath := os.Getenv("DATES_PATH")
	if datesPath == "" {
		if len(cfg.PickupDates) == 0 {
			return nil, fmt.Errorf("no pickup dates configured")
		}
		return cfg.PickupDates, nil
	}

	data, err := os.ReadFile(datesPath)
	if err != nil {
		logger.Error().Err(err).Str("dates_path", datesPath).Msg("read pickup dates")
		return nil, err
	}

	var datesConfig struct {
		Dates []models.PickupDate `yaml:"dates"`
	}
	if err := yaml.Unmarshal(data, &datesConfig); err != nil {
		logger.Error().Err(err).Str("dates_path", datesPath).Msg("parse pickup dates")
		return nil, err
	}

	if err := config.ValidatePickupDates(datesConfig.Dates); err != nil {
		return nil, err
	}
	return datesConfig.Dates, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

// initState prefers redis with an in-memory fallback; with no redis address
// configured the in-memory repository runs alone.
func initState(cfg *config.Config, logger *zerolog.Logger) domain.StateRepository {
	memory := repository.NewMemoryStateRepository()

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory state")
		return memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory state")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := repository.NewRedisStateRepository(redisClient)
	return repository.NewFailoverStateRepository(primary, memory, logger)
}

func startNotifier(ctx context.Context, cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Notifications.Enabled {
		logger.Info().Msg("confirmation emails disabled")
		return
	}

	mailer := notifier.NewResendMailer(cfg.Notifications, cfg.Payment)
	dispatcher := notifier.NewDispatcher(mailer, logger)
	eventBus.Subscribe(events.EventBookingCreated, dispatcher.HandleEvent)
	go dispatcher.Start(ctx)

	logger.Info().Str("from", cfg.Notifications.FromEmail).Msg("confirmation emails enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, server *api.Server, logger *zerolog.Logger) error {
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
