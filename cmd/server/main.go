package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/lexhour/lexhour/internal/auth"
	"github.com/lexhour/lexhour/internal/config"
	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/service"
	"github.com/lexhour/lexhour/internal/storage/sqlite"
	"github.com/lexhour/lexhour/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := service.NewAuthService(authenticator, tokens, store)
	clientSvc := service.NewClientService(store)
	entrySvc := service.NewEntryService(store)
	dashboardSvc := service.NewDashboardService(store)
	invoiceSvc := service.NewInvoiceService(store, cfg.CurrencySymbol)

	// Authenticated endpoints live on their own mux behind RequireAuth.
	protected := http.NewServeMux()
	authSvc.Routes(protected)
	clientSvc.Routes(protected)
	entrySvc.Routes(protected)
	dashboardSvc.Routes(protected)
	invoiceSvc.Routes(protected)

	mux := http.NewServeMux()
	authSvc.PublicRoutes(mux)
	mux.Handle("/api/", middleware.RequireAuth(tokens, protected))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := middleware.Logging(middleware.CORS(middleware.Metrics(mux)))

	// h2c allows HTTP/2 without TLS for clients that want multiplexing.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
