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

	"portfolio-backend/config"
	"portfolio-backend/controllers"
	"portfolio-backend/logging"
	"portfolio-backend/metrics"
	"portfolio-backend/middleware"
	"portfolio-backend/routes"
	"portfolio-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, warnings := config.Load()
	logger := logging.New(cfg.Server.LogLevel)
	slog.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn("config", "warning", w)
	}

	// Set Gin mode
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Create a context that listens for the interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	cms := services.NewCMSClient(cfg.CMS.URL, cfg.CMS.APIKey, cfg.CMS.Timeout,
		services.WithCMSLogger(logger),
		services.WithCMSMetrics(m),
	)

	store, closeStore, err := openViewStore(ctx, cfg.Views)
	if err != nil {
		logger.Error("open view store", "backend", cfg.Views.Backend, "error", err)
		os.Exit(1)
	}
	logger.Info("view store ready", "backend", cfg.Views.Backend)

	viewCounter := services.NewViewCounter(store, cfg.Views.Timeout, logger, m)
	resolver := services.NewResolver(cms, logger)
	posts := services.NewPostService(cms, services.NewRenderer(), cfg.Server.SiteURL, logger)
	handler := controllers.NewHandler(cms, resolver, posts, viewCounter, logger)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	routes.SetupRoutes(router, handler, m.Handler())

	// Create a server with timeouts
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Initializing the server in a goroutine so that
	// it won't block the graceful shutdown handling
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "cms", cfg.CMS.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			stop()
		}
	}()

	// Listen for the interrupt signal
	<-ctx.Done()

	// Restore default behavior on the interrupt signal
	stop()
	logger.Info("shutting down server")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight view increments land before the store goes away.
	viewCounter.Wait()
	if err := closeStore(shutdownCtx); err != nil {
		logger.Warn("close view store", "error", err)
	}

	logger.Info("server exiting")
}

// openViewStore connects the configured view backend and returns a matching
// close function.
func openViewStore(ctx context.Context, cfg config.ViewsConfig) (services.ViewStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case config.ViewsBackendMongo:
		s, err := services.ConnectMongoViewStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		return s, s.Close, nil
	case config.ViewsBackendPostgres:
		s, err := services.ConnectPostgresViewStore(ctx, cfg.PostgresURL, cfg.PostgresTable)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return s, func(context.Context) error { s.Close(); return nil }, nil
	default:
		return services.NewMemoryViewStore(), noop, nil
	}
}
