package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/eots-battle/internal/api"
	"github.com/pefman/eots-battle/internal/catalog"
	"github.com/pefman/eots-battle/internal/config"
	"github.com/pefman/eots-battle/internal/deck"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/logging"
	"github.com/pefman/eots-battle/internal/models"
	"github.com/pefman/eots-battle/internal/stats"
	"github.com/pefman/eots-battle/internal/storage/sqlite"
)

const maxBodyBytes = 1 << 20

type server struct {
	log     *zap.Logger
	catalog *catalog.Store
	reports stats.ReportStore
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Catalog
	r.HandleFunc("/api/units", s.handleUnits).Methods(http.MethodGet)
	r.HandleFunc("/api/units/{id:[0-9]+}", s.handleUnit).Methods(http.MethodGet)

	// Battle resolution
	r.HandleFunc("/api/battle/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/battle/roll", s.handleRoll).Methods(http.MethodPost)
	r.HandleFunc("/ws/analyze", s.handleAnalyzeWS).Methods(http.MethodGet)

	// Reports
	r.HandleFunc("/api/reports", s.handleReports).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/{id}", s.handleReport).Methods(http.MethodGet)

	// Decks; probability must be registered before the {side} pattern
	r.HandleFunc("/api/deck/probability", s.handleProbability).Methods(http.MethodGet)
	r.HandleFunc("/api/deck/{side}", s.handleDeck).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unsupported path")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})
	return withCORS(r)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(apiError(code, msg))
}

func apiError(code int, msg string) api.Error {
	return api.Error{Code: http.StatusText(code), Message: msg, Status: code}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidParams),
		errors.Is(err, game.ErrInvalidDefense),
		errors.Is(err, models.ErrEmptyRoster),
		errors.Is(err, models.ErrInvalidUnit),
		errors.Is(err, catalog.ErrUnknownUnit),
		errors.Is(err, deck.ErrInvalidCounts):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func openReports(cfg config.Config) (stats.ReportStore, error) {
	if cfg.ReportDB == "" {
		return stats.NewHistory(cfg.ReportHistory), nil
	}
	return sqlite.Open(cfg.ReportDB)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	store, err := catalog.Load(catalog.Paths{Units: cfg.UnitData, AlliedDeck: cfg.AlliedDeck, JapanDeck: cfg.JapanDeck})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("catalog: data file missing, only inline rosters can be analyzed", zap.Error(err))
		store = catalog.NewStore(nil)
	case err != nil:
		log.Fatal("catalog: load", zap.Error(err))
	}
	log.Info("catalog: loaded",
		zap.Int("allied_units", len(store.Allied)),
		zap.Int("japan_units", len(store.Japan)),
		zap.Int("decks", len(store.Decks)))

	reports, err := openReports(cfg)
	if err != nil {
		log.Fatal("reports: open", zap.String("path", cfg.ReportDB), zap.Error(err))
	}
	defer func() { _ = reports.Close() }()

	s := &server{log: log, catalog: store, reports: reports}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("http: listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: serve", zap.Error(err))
	}
}
