package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tour-booking/internal/auth"
	"tour-booking/internal/config"
	"tour-booking/internal/handlers"
	"tour-booking/internal/logging"
	"tour-booking/internal/metrics"
	"tour-booking/internal/service"
	"tour-booking/internal/storage"

	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return err
	}

	m := metrics.New()
	authSvc := service.NewAuthService(db, tokens, logger, m)
	tours := service.NewTourService(db, logger)
	bookings := service.NewBookingService(db, db, logger, m)

	if cfg.BootstrapAdmin() {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			logger.Info("admin account created", "email", service.NormalizeEmail(cfg.Admin.Email))
		}
	}

	h := handlers.NewHandlers(authSvc, tours, bookings, db, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           setupRouter(h, m, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupRouter mounts the API at the root and under /api, plus the
// operational endpoints, behind the CORS allow-list.
func setupRouter(h *handlers.Handlers, m *metrics.Metrics, allowedOrigins []string) http.Handler {
	api := http.NewServeMux()
	h.RegisterRoutes(api)
	apiHandler := m.Middleware(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/api/", http.StripPrefix("/api", apiHandler))
	mux.Handle("/", apiHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}
