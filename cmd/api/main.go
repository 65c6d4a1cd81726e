package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"energyhub/internal/api"
	"energyhub/internal/api/handlers"
	"energyhub/internal/build"
	"energyhub/internal/results"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	production := os.Getenv("API_ENV") == "production"

	log, err := newLogger(production)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	ttl := time.Hour
	if s := os.Getenv("MODEL_CACHE_TTL"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil {
			ttl = parsed
		} else {
			log.Warn("ignoring MODEL_CACHE_TTL", zap.String("value", s), zap.Error(err))
		}
	}
	cache := handlers.NewModelCache(ttl)
	defer cache.Close()

	// Solutions can only be persisted when RESULTS_DB is set.
	var store *results.Store
	if path := os.Getenv("RESULTS_DB"); path != "" {
		store, err = results.Open(path)
		if err != nil {
			log.Fatal("open result store", zap.String("path", path), zap.Error(err))
		}
		defer store.Close()
		log.Info("persisting results", zap.String("path", path))
	}

	router := api.NewRouter(api.Deps{
		Log:            log,
		Engine:         build.New(log, 0),
		Cache:          cache,
		Store:          store,
		TechnologyDir:  os.Getenv("TECHNOLOGY_DIR"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}

func newLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
