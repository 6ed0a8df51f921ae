package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/geoenrich/internal/config"
	"github.com/UnknownOlympus/geoenrich/internal/geocoding"
	"github.com/UnknownOlympus/geoenrich/internal/metrics"
	"github.com/UnknownOlympus/geoenrich/internal/ratelimit"
	"github.com/UnknownOlympus/geoenrich/internal/repository"
	"github.com/UnknownOlympus/geoenrich/internal/service"
	"github.com/UnknownOlympus/geoenrich/internal/sink"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const (
	pushJobName     = "geoenrich"
	shutdownTimeout = 5 * time.Second
)

// main is the entry point of the application. It runs one enrichment batch
// and exits with status 1 when the run fails.
func main() {
	// Cancel the run on an interrupt signal. The destination is only written
	// after every record has been processed, so an interrupted run leaves it untouched.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment. Every line of a run carries its id.
	logger := setupLogger(cfg.Env).With("run_id", uuid.NewString())

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	err := run(ctx, cfg, logger, reg, appMetrics)
	stop()

	recordRun(logger, appMetrics, err)
	pushMetrics(logger, reg, cfg.Monitoring.PushgatewayURL)

	if err != nil {
		logger.Error("Enrichment run failed", "error", err)
		os.Exit(1)
	}
}

// run acquires the source database and the sink, runs the batch and releases
// both before returning.
func run(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	reg *prometheus.Registry,
	appMetrics *metrics.Metrics,
) error {
	// Initialize the source database connection.
	sourceDB, err := repository.NewDatabase(ctx, cfg.Source.Driver, cfg.Source.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer func() {
		if errClose := sourceDB.Close(); errClose != nil {
			logger.Error("Failed to close source database", "error", errClose)
		}
	}()

	if cfg.Monitoring.Port > 0 {
		server := startMonitoringServer(ctx, logger, reg, sourceDB, cfg.Monitoring.Port)
		defer stopMonitoringServer(logger, server)
	}

	repo := repository.NewRepository(sourceDB, logger, cfg.Source.DayOffset)

	// Create geocoding provider using factory pattern based on configuration
	// This allows runtime selection between different providers (Google, Visicom, Nominatim, etc.)
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
		BaseURL:   cfg.Geocoder.BaseURL,
		APIKey:    cfg.Geocoder.APIKey,
		UserAgent: cfg.Geocoder.UserAgent,
		Region:    cfg.Geocoder.Region,
		Timeout:   cfg.Geocoder.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Provider)

	// One limiter paces both the candidate fallbacks and the records.
	limiter := ratelimit.NewFixedInterval(ratelimit.Seconds(cfg.Geocoder.RequestDelay))
	geocoder := geocoding.NewClient(
		geoProvider,
		cfg.Geocoder.Provider, // Provider name for metrics
		limiter,
		cfg.Geocoder.RegionSuffix,
		appMetrics,
		logger,
	)

	// Open the destination up front so a bad target fails before any geocoding.
	writer, err := sink.New(ctx, sink.Config{
		Mode:   sink.Mode(cfg.Sink.Mode),
		Target: cfg.Sink.Target,
		Schema: cfg.Sink.Schema,
		Table:  cfg.Sink.Table,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}
	defer func() {
		if errClose := writer.Close(); errClose != nil {
			logger.Error("Failed to close sink", "error", errClose)
		}
	}()

	enrichment := service.NewEnrichmentService(
		logger,
		repo,
		geocoder,
		writer,
		cfg.Sink.Mode,
		appMetrics,
		limiter,
	)

	logger.InfoContext(ctx, "Enrichment run started",
		"day_offset", cfg.Source.DayOffset, "sink", cfg.Sink.Mode, "provider", cfg.Geocoder.Provider)

	summary, err := enrichment.Run(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Enrichment run completed", "found", summary.Found, "written", summary.Written)

	return nil
}

// recordRun sets the last run gauges.
func recordRun(logger *slog.Logger, appMetrics *metrics.Metrics, runErr error) {
	success := 1.0
	if runErr != nil {
		success = 0
	}
	appMetrics.LastRunSuccess.Set(success)
	appMetrics.LastRunTimestamp.SetToCurrentTime()

	logger.Debug("Run metrics recorded", "success", success)
}

// pushMetrics sends the final metrics to a Pushgateway, if one is configured.
// A failed push is logged and does not change the run's exit status.
func pushMetrics(logger *slog.Logger, reg *prometheus.Registry, url string) {
	if url == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := push.New(url, pushJobName).Gatherer(reg).PushContext(ctx); err != nil {
		logger.Error("Failed to push metrics", "url", url, "error", err)
		return
	}

	logger.Debug("Metrics pushed", "url", url)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints
// in its own goroutine and returns it so the caller can shut it down.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: The source database, pinged by the health check.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb pinger,
	port int,
) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.PingContext(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Monitoring server failed", "error", err)
		}
	}()

	return server
}

func stopMonitoringServer(log *slog.Logger, server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Failed to stop monitoring server", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
