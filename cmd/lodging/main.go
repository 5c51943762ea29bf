package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/config"
	httptransport "github.com/michalprusek/marianska-sub005/internal/http"
	"github.com/michalprusek/marianska-sub005/internal/logging"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/persistence/memory"
	"github.com/michalprusek/marianska-sub005/internal/persistence/postgres"
	"github.com/michalprusek/marianska-sub005/internal/persistence/sqlite"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotenv(); err != nil {
		logger.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("lodging API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	property, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		return err
	}
	logger.Info("settings loaded", "path", cfg.SettingsFile, "rooms", len(property.Rooms), "version", property.Version)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	app := newApp(cfg, store, property, time.Now, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	logger.Info("lodging API listening", "addr", ln.Addr().String(), "storage", cfg.Storage)
	return serve(ctx, server, ln, app.reaper, logger)
}

const shutdownTimeout = 10 * time.Second

// serve runs server on ln and the reaper until ctx is cancelled or serving
// fails. It returns only after in-flight requests have drained and the reaper
// has stopped, so the caller may close storage afterwards.
func serve(ctx context.Context, server *http.Server, ln net.Listener, reaper *application.HoldReaper, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		reaper.Run(ctx)
	}()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	serveErr := server.Serve(ln)
	cancel()
	<-shutdownDone
	<-reaperDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", serveErr)
	}
	logger.Info("lodging API shut down")
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (persistence.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.Open(), nil
	case config.StoragePostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	default:
		return sqlite.Open(ctx, cfg.SQLiteDSN)
	}
}

type app struct {
	handler http.Handler
	reaper  *application.HoldReaper
}

func newApp(cfg config.Config, store persistence.Store, property *settings.Settings, now func() time.Time, logger *slog.Logger) app {
	availabilityService := application.NewAvailabilityService(store, property, now,
		application.WithLogger(logger),
		application.WithCalendarCache(cfg.CalendarCacheTTL, cfg.CalendarCacheSize),
	)
	writeOpts := []application.Option{
		application.WithLogger(logger),
		application.WithHoldTTL(cfg.HoldTTL),
		application.WithMaxStayNights(cfg.MaxStayNights),
		application.WithInvalidator(availabilityService),
	}
	holdService := application.NewHoldService(store, property, uuid.NewString, now, writeOpts...)
	bookingService := application.NewBookingService(store, property, uuid.NewString, now, writeOpts...)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Availability: httptransport.NewAvailabilityHandler(availabilityService, property, logger),
		Holds:        httptransport.NewHoldHandler(holdService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
		Health:       store.Ping,
	})

	return app{
		handler: router,
		reaper:  application.NewHoldReaper(holdService, cfg.ReapInterval, logger),
	}
}
