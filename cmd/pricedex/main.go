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

	"github.com/kailas-cloud/pricedex/internal/config"
	"github.com/kailas-cloud/pricedex/internal/db"
	dbRedis "github.com/kailas-cloud/pricedex/internal/db/redis"
	"github.com/kailas-cloud/pricedex/internal/ingest"
	"github.com/kailas-cloud/pricedex/internal/ingest/columns"
	"github.com/kailas-cloud/pricedex/internal/ingest/extract"
	"github.com/kailas-cloud/pricedex/internal/ingest/sheet"
	logpkg "github.com/kailas-cloud/pricedex/internal/logger"
	"github.com/kailas-cloud/pricedex/internal/metrics"
	corpusrepo "github.com/kailas-cloud/pricedex/internal/repository/corpus"
	indexrepo "github.com/kailas-cloud/pricedex/internal/repository/index"
	chiTransport "github.com/kailas-cloud/pricedex/internal/transport/chi"
	openaiAdvisor "github.com/kailas-cloud/pricedex/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/pricedex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/pricedex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/pricedex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/pricedex/internal/usecase/search"
	"github.com/kailas-cloud/pricedex/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting pricedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.Bool("advisor", cfg.AI.Enabled),
	)

	// Search index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Search keeps serving from the corpus while the index is down, so an
	// unreachable index only degrades startup.
	ctx := context.Background()
	indexRepo, err := indexrepo.New(store, indexrepo.Config{
		IndexName: cfg.Database.IndexName,
		KeyPrefix: cfg.Database.KeyPrefix,
		Language:  cfg.Database.Language,
		BatchSize: cfg.Import.BatchSize,
		Scorer:    db.Scorer(cfg.Search.Scorer),
		Recreate:  cfg.Database.RecreateIndex,
	}, logger.Named("index"))
	if err != nil {
		logger.Fatal("Failed to build search index", zap.Error(err))
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Search index not ready, search falls back to corpus", zap.Error(err))
	} else if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Warn("Failed to ensure search index", zap.Error(err))
	} else {
		logger.Info("Connected to search index")
	}

	// Corpus store
	corpus, err := corpusrepo.Open(corpusrepo.Config{
		Path:     cfg.Corpus.Path,
		InMemory: cfg.Corpus.InMemory,
	}, logger.Named("corpus"))
	if err != nil {
		logger.Fatal("Failed to open corpus", zap.Error(err))
	}
	defer func() {
		if err := corpus.Close(); err != nil {
			logger.Error("Error closing corpus", zap.Error(err))
		}
	}()

	// Register app metrics explicitly (no init())
	metrics.RegisterAppMetrics()

	parser, err := buildParser(&cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build parser", zap.Error(err))
	}

	// Use case services
	importSvc, err := importeruc.New(parser, corpus, indexRepo, importeruc.Config{
		Workers:         cfg.Import.Workers,
		Timeout:         time.Duration(cfg.Import.TimeoutMin) * time.Minute,
		CheckpointEvery: cfg.Import.CheckpointEvery,
		MaxFileBytes:    int64(cfg.Import.MaxFileMB) << 20,
	}, logger.Named("importer"))
	if err != nil {
		logger.Fatal("Failed to create importer", zap.Error(err))
	}
	searchSvc := searchuc.New(indexRepo, corpus, searchuc.Config{
		MinScore:    *cfg.Search.MinScore,
		IndexSize:   cfg.Search.IndexSize,
		Examples:    cfg.Search.Examples,
		TagMinCount: cfg.Search.TagMinCount,
		MaxTags:     cfg.Search.MaxTags,
	}, logger.Named("search"))
	catalogSvc := cataloguc.New(indexRepo, corpus, logger.Named("catalog"))
	healthSvc := healthuc.New(store, corpus)

	server := chiTransport.NewServer(importSvc, searchSvc, catalogSvc, healthSvc)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := importSvc.Close(); err != nil {
		logger.Warn("Import jobs still running at shutdown", zap.Int("running", importSvc.Running()), zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildParser assembles the ingest pipeline: sheets -> columns -> rows.
func buildParser(cfg *config.Config, logger *zap.Logger) (*ingest.Parser, error) {
	synonyms := columns.DefaultSynonyms()
	if err := synonyms.Merge(cfg.Columns.Synonyms); err != nil {
		return nil, fmt.Errorf("columns.synonyms: %w", err)
	}

	colCfg := columns.DefaultConfig()
	colCfg.Synonyms = synonyms
	colCfg.Fuzzy = *cfg.Columns.Fuzzy
	if cfg.Columns.MinConfidence > 0 {
		colCfg.MinConfidence = cfg.Columns.MinConfidence
	}

	opts := []columns.Option{columns.WithLogger(logger.Named("columns"))}
	if cfg.AI.Enabled {
		opts = append(opts, columns.WithAdvisor(openaiAdvisor.NewAdvisor(&openaiAdvisor.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: time.Duration(cfg.AI.TimeoutSec) * time.Second,
			Logger:  logger.Named("advisor"),
		})))
	}

	return ingest.NewParser(
		sheet.NewReader(sheet.Config{
			MaxRows:     cfg.Import.MaxRows,
			PDFMaxPages: cfg.Import.PDFMaxPages,
		}, logger.Named("sheet")),
		columns.NewMapper(colCfg, opts...),
		extract.New(logger.Named("extract")),
		logger.Named("parser"),
	), nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if route := chi.RouteContext(r.Context()); route != nil {
				if pattern := route.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
