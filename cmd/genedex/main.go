package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/config"
	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/db/breaker"
	"github.com/kailas-cloud/genedex/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/genedex/internal/db/redis"
	logpkg "github.com/kailas-cloud/genedex/internal/logger"
	"github.com/kailas-cloud/genedex/internal/metrics"
	repogene "github.com/kailas-cloud/genedex/internal/repository/gene"
	"github.com/kailas-cloud/genedex/internal/repository/lookupcache"
	chiTransport "github.com/kailas-cloud/genedex/internal/transport/chi"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
	healthuc "github.com/kailas-cloud/genedex/internal/usecase/health"
	"github.com/kailas-cloud/genedex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting genedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("backend_addrs", cfg.Backend.Addrs),
		zap.String("index", cfg.Backend.Index),
		zap.String("tier1_index", cfg.Backend.Tier1Index),
	)

	metrics.RegisterBackendMetrics()

	es, err := elastic.NewStore(elastic.Config{
		Addrs:          cfg.Backend.Addrs,
		Username:       cfg.Backend.Username,
		Password:       cfg.Backend.Password,
		APIKey:         cfg.Backend.APIKey,
		MaxRetries:     cfg.Backend.MaxRetries,
		RequestTimeout: time.Duration(cfg.Backend.RequestTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search backend client", zap.Error(err))
	}

	var store db.Store = es
	if cfg.Breaker.Enabled {
		store = breaker.New(es, breaker.Config{
			Name:             "backend",
			MinRequests:      cfg.Breaker.MinRequests,
			FailureRatio:     cfg.Breaker.FailureRatio,
			OpenTimeout:      time.Duration(cfg.Breaker.OpenTimeoutSec) * time.Second,
			HalfOpenRequests: cfg.Breaker.HalfOpenMax,
		}, logger)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Backend.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search backend not ready", zap.Error(err))
	}
	logger.Info("Connected to search backend")

	repo := repogene.New(store, logger)

	var opts []geneuc.Option
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create lookup cache", zap.Error(err))
		}
		defer cache.Close()
		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Lookup cache not ready", zap.Error(err))
		}
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		opts = append(opts, geneuc.WithLookuper(
			lookupcache.New(repo, cache, ttl, metrics.LookupCacheTotal, logger),
		))
		cachePinger = cache
		logger.Info("Lookup cache enabled", zap.Duration("ttl", ttl))
	}

	geneSvc := geneuc.New(repo, geneuc.Config{
		Targets: geneuc.Targets{
			Index:      cfg.Backend.Index,
			Tier1Index: cfg.Backend.Tier1Index,
			Tier1Taxa:  cfg.Backend.Tier1Taxa,
		},
		DefaultSize: cfg.Query.DefaultSize,
		MaxSize:     cfg.Query.MaxSize,
		MaxIDs:      cfg.Query.MaxIDs,
		BatchSize:   cfg.Scroll.BatchSize,
		KeepAlive:   time.Duration(cfg.Scroll.KeepAliveSec) * time.Second,
	}, logger, opts...)

	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(geneSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer returns a JSON error body instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
