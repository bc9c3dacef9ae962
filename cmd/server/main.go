package main

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
	"github.com/sirupsen/logrus"

	"finplan/internal/config"
	"finplan/internal/handlers/analysis"
	"finplan/internal/logging"
	"finplan/internal/services/intelligence"
	"finplan/internal/services/storage"
	"finplan/internal/version"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat(), os.Stderr)

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	log.WithFields(logrus.Fields{
		"version": version.Get().String(),
		"addr":    cfg.ListenAddr,
		"data":    cfg.DataDirectory,
	}).Info("starting planner server")

	handler, err := SetupDependencies(cfg, log)
	if err != nil {
		log.WithField(logging.FieldError, err).Fatal("could not set up dependencies")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithField(logging.FieldError, err).Error("graceful shutdown failed")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithField(logging.FieldError, err).Fatal("server stopped")
	}
}

// SetupDependencies opens the profile store and builds the API handler.
// An encrypted store is unlocked with the configured passphrase; without one
// the profile endpoints answer 423 until the store is unlocked.
func SetupDependencies(cfg *config.Config, log *logrus.Logger) (*analysis.Handler, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.DataDirectory, log)
	if err != nil {
		return nil, err
	}
	if store.IsEncrypted() {
		if cfg.Passphrase == "" {
			log.Warn("profile store is encrypted and PLANNER_PASSPHRASE is not set")
		} else if err := store.Unlock(cfg.Passphrase); err != nil {
			return nil, err
		}
	}

	planner := intelligence.New(log, intelligence.Options{
		SimulateScenarios:    cfg.SimulateScenarios,
		SimulationIterations: cfg.SimulationIterations,
		Seed:                 cfg.SimulationSeed,
		MarketMortgageRate:   cfg.MarketMortgageRate,
		Workers:              cfg.SimulationWorkers,
		BatchSize:            cfg.SimulationBatchSize,
	})

	return analysis.New(planner, storage.NewProfileStore(store), log, analysis.Options{
		DefaultIterations: cfg.SimulationIterations,
	}), nil
}

// SetupRouter creates the chi router with the API mounted
func SetupRouter(h *analysis.Handler, log *logrus.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/health", http.StatusTemporaryRedirect)
	})
	h.RegisterRoutes(r)

	return r
}

// requestLogger logs one line per request through logrus
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	entry := logging.Component(logging.OrDiscard(log), logging.ComponentHTTP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
			}).WithField(logging.FieldDurationMs, time.Since(start).Milliseconds()).Debug("request")
		})
	}
}
