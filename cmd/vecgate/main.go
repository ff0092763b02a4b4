package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/config"
	"github.com/kailas-cloud/vecgate/internal/db"
	dbRedis "github.com/kailas-cloud/vecgate/internal/db/redis"
	logpkg "github.com/kailas-cloud/vecgate/internal/logger"
	"github.com/kailas-cloud/vecgate/internal/metrics"
	"github.com/kailas-cloud/vecgate/internal/normalize"
	"github.com/kailas-cloud/vecgate/internal/repository/index"
	"github.com/kailas-cloud/vecgate/internal/stream"
	chiTransport "github.com/kailas-cloud/vecgate/internal/transport/chi"
	"github.com/kailas-cloud/vecgate/internal/transport/pinecone"
	embeddinguc "github.com/kailas-cloud/vecgate/internal/usecase/embedding"
	fetchuc "github.com/kailas-cloud/vecgate/internal/usecase/fetch"
	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vecgate/internal/usecase/search"
	toolsuc "github.com/kailas-cloud/vecgate/internal/usecase/tools"
	"github.com/kailas-cloud/vecgate/internal/version"
)

func main() {
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vecgate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index", cfg.Store.Index),
		zap.String("namespace", cfg.Store.Namespace),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("embedding_dimensions", cfg.Embedding.Dimensions),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterStoreMetrics()
	metrics.RegisterStreamMetrics()

	ctx := context.Background()

	// Optional embedding cache
	var kv db.Store
	if cfg.Cache.Addr != "" {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.Cache.Addr},
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeoutSec) * time.Second
		if err := cacheStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.String("addr", cfg.Cache.Addr))
		kv = cacheStore
	}

	// Build embedder chain — composition root
	embedder, err := embeddinguc.Build(cfg, kv, logger)
	if err != nil {
		logger.Fatal("Failed to build embedder", zap.Error(err))
	}

	// Vector index data plane
	store := pinecone.NewClient(pinecone.Config{
		Host:           cfg.Store.Host,
		APIKey:         cfg.Store.APIKey,
		Namespace:      cfg.Store.Namespace,
		RequestTimeout: time.Duration(cfg.Store.RequestTimeoutSec) * time.Second,
		RetryMax:       cfg.Store.RetryMax,
		Logger:         logger,
	})
	indexRepo := index.New(store, logger)

	norm := normalize.New(cfg.Content.TextKeyList(), cfg.Content.MaxContentChars, cfg.Content.SnippetChars)

	// Create use case services
	searchSvc := searchuc.New(indexRepo, embedder, norm, cfg.Search.DefaultTopK, logger)
	fetchSvc := fetchuc.New(indexRepo, norm)
	dispatcher := toolsuc.New(searchSvc, fetchSvc)

	// Create chi server
	server := chiTransport.NewServer(
		dispatcher,
		healthuc.New(),
		stream.NewHub(),
		time.Duration(cfg.Stream.HeartbeatSec)*time.Second,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerTokenMiddleware(cfg.Auth.SecretToken))
	r.Use(metrics.Middleware())
	server.Register(r)

	// Stream sessions inherit baseCtx through BaseContext; canceling it on
	// shutdown ends them so Shutdown can drain the connections.
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	// Graceful shutdown
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

	cancelBase()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
