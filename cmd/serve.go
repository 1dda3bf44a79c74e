package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nba-predictions-go/database"
	"nba-predictions-go/handlers"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
	"nba-predictions-go/middleware"
	"nba-predictions-go/services"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.WithPrefix("Server")
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	teams, err := loadCatalog()
	if err != nil {
		return err
	}

	stores, err := openStores(ctx)
	if err != nil {
		if !cfg.App.IsDevelopment {
			return err
		}
		logger.Errorf("Database connection failed: %v", err)
		logger.Warn("Continuing with in-memory storage")
		stores = database.NewMemoryStores()
	}
	defer stores.Close()

	authService := services.NewAuthService(stores.Users, cfg.ToAuthConfig())
	if cfg.IsEmailConfigured() {
		authService.SetMailer(services.NewEmailService(cfg.ToEmailConfig()))
		logger.Info("Welcome emails enabled")
	}

	if cfg.App.SeedDemoData {
		seeder := services.NewSeeder(stores.Users, stores.Predictions, teams, uint64(time.Now().UnixNano()))
		if err := seedDemoData(ctx, seeder, cfg.App.SeedPerUser); err != nil {
			logger.Warnf("Demo data not seeded: %v", err)
		}
	}

	collab := interfaces.Collaborators{
		Session: services.ContextSession{},
		Store:   stores.Predictions,
		Catalog: teams,
	}

	broadcaster := services.NewEventBroadcaster(cfg.App.SSEHeartbeat)
	defer broadcaster.Stop()

	sessions := services.NewViewSessions(collab, broadcaster.PredictionRecorded)
	janitor := services.NewSessionJanitor(sessions, janitorInterval, cfg.App.SessionIdleTimeout)
	janitor.Start()
	defer janitor.Stop()

	events := handlers.NewSSEHandler(broadcaster)
	router := handlers.NewRouter(handlers.Routes{
		Auth: handlers.NewAuthHandler(
			authService,
			services.NewAvailabilityChecker(authService.IsAvailable, cfg.App.AvailabilityDebounce),
			cfg.SecureCookies(),
		),
		Stats:         handlers.NewStatsHandler(services.NewStatsService(collab), teams),
		View:          handlers.NewViewHandler(sessions),
		Events:        events,
		AuthMW:        middleware.NewAuthMiddleware(authService),
		BehindProxy:   cfg.Server.BehindProxy,
		SecureCookies: cfg.SecureCookies(),
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(events.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		if cfg.Server.UseTLS {
			logger.Infof("HTTPS server starting on %s (storage: %s)", srv.Addr, stores.Backend)
			errCh <- srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
			return
		}
		logger.Infof("HTTP server starting on %s (storage: %s)", srv.Addr, stores.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
