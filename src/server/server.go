package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/activity"
	"webhookrelay/src/connectors"
	"webhookrelay/src/errs"
	"webhookrelay/src/handler"
	"webhookrelay/src/repository"
	"webhookrelay/src/strategy"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Logs     repository.ActivityLogStore
	Config   repository.ConfigurationStore
	Exchange connectors.Exchange
	Recorder *activity.Recorder
	Hub      *activity.Hub
	Executor *strategy.Executor
}

// NewRouter mounts the relay API under /api.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/webhook", handler.WebhookHandler(d.Executor))

		r.Get("/config", handler.GetConfigHandler(d.Config, d.Recorder))
		r.Post("/config", handler.UpdateConfigHandler(d.Config, d.Recorder))
		r.Get("/strategy", handler.GetStrategyHandler(d.Config, d.Recorder))
		r.Post("/strategy", handler.UpdateStrategyHandler(d.Config, d.Recorder))

		r.Get("/test-connection", handler.TestConnectionHandler(d.Exchange, d.Recorder))

		r.Get("/logs", handler.ListLogsHandler(d.Logs, d.Recorder))
		r.Post("/logs/clear", handler.ClearLogsHandler(d.Logs, d.Recorder))
		if d.Hub != nil {
			r.Get("/logs/stream", handler.StreamLogsHandler(d.Hub))
		}

		r.Route("/trading-pairs", func(r chi.Router) {
			r.Get("/", handler.ListTradingPairsHandler(d.Config, d.Recorder))
			r.Post("/", handler.CreateTradingPairHandler(d.Config, d.Recorder))
			r.Get("/{symbol}", handler.GetTradingPairHandler(d.Config, d.Recorder))
			r.Put("/{symbol}", handler.UpdateTradingPairHandler(d.Config, d.Recorder))
			r.Delete("/{symbol}", handler.DeleteTradingPairHandler(d.Config, d.Recorder))
		})
	})

	return r
}

// AnnounceStartup loads the configuration, probes the exchange and records the outcome.
func AnnounceStartup(ctx context.Context, d Deps) {
	if _, err := d.Config.Get(ctx); err != nil {
		_, _ = d.Recorder.Error(ctx, "Error initializing system", err, "")
		return
	}

	if d.Exchange.TestConnection(ctx) {
		_, _ = d.Recorder.System(ctx, "Bot started - Connected to Coinbase API", nil)
		return
	}
	_, _ = d.Recorder.Error(ctx, "Bot started - Failed to connect to Coinbase API",
		errors.New("Check API key and network connection"), errs.CodeExchange)
}

// StartServer serves d on cfg.Port until SIGINT or SIGTERM.
func StartServer(cfg *Config, d Deps) {
	// Graceful server
	// Server setup
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	go AnnounceStartup(context.Background(), d)

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	grace := cfg.ShutdownTimeout
	if grace <= 0 {
		grace = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
