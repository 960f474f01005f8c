// Package main is the entrypoint for the Meeteo API server. The server also
// runs the outfit analysis worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/meeteo/internal/ai"
	"github.com/kiranshivaraju/meeteo/internal/analysis"
	"github.com/kiranshivaraju/meeteo/internal/api"
	"github.com/kiranshivaraju/meeteo/internal/api/handler"
	mw "github.com/kiranshivaraju/meeteo/internal/api/middleware"
	"github.com/kiranshivaraju/meeteo/internal/cache"
	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/enrich"
	"github.com/kiranshivaraju/meeteo/internal/location"
	"github.com/kiranshivaraju/meeteo/internal/logging"
	"github.com/kiranshivaraju/meeteo/internal/outfit"
	"github.com/kiranshivaraju/meeteo/internal/photos"
	"github.com/kiranshivaraju/meeteo/internal/recommend"
	"github.com/kiranshivaraju/meeteo/internal/shopping"
	"github.com/kiranshivaraju/meeteo/internal/store"
	"github.com/kiranshivaraju/meeteo/internal/weather"
)

const (
	shutdownTimeout   = 30 * time.Second
	writeTimeoutSlack = 10 * time.Second
	migrationsDir     = "migrations"
)

func main() {
	logging.New(os.Stdout, "info")

	if err := loadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// loadDotEnv reads path into the environment if it exists. Variables already
// set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func run() error {
	// 1. Load config; fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.New(os.Stdout, cfg.Log.Level)
	slog.Info("config loaded",
		"ai_provider", cfg.AI.Provider,
		"analysis_queue", cfg.Analysis.Queue,
		"env", cfg.Server.Env,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	defer func() {
		if err := ai.Close(aiProvider); err != nil {
			slog.Error("failed to close AI provider", "error", err)
		}
	}()
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Build the recommendation pipeline
	searcher, err := shopping.NewSearcher(ctx, cfg.Search)
	if err != nil {
		return fmt.Errorf("create product searcher: %w", err)
	}
	finder := photos.NewFinder(aiProvider, cfg.Photos)
	resolver := location.NewResolver(aiProvider)
	weatherClient := weather.NewClient(cfg.Weather)
	pipeline := recommend.NewPipeline(
		resolver,
		weatherClient,
		outfit.NewGenerator(aiProvider),
		enrich.NewEnricher(searcher, finder),
	)

	// 7. Build the outfit analyzer and its queue
	jobs := analysis.NewRedisJobStore(redisCache, cfg.Analysis.JobTTL)
	worker := analysis.NewWorker(aiProvider, jobs)
	queue, stopQueue, err := startQueue(cfg, worker)
	if err != nil {
		return fmt.Errorf("start analysis queue: %w", err)
	}
	defer stopQueue()
	analyzer := analysis.NewService(jobs, queue)

	// 8. Build router with dependencies
	pgStore := store.NewPostgresStore(pool)

	deps := api.Dependencies{
		Auth:      mw.NewAuth(pgStore, cfg.Auth),
		RateLimit: mw.NewRateLimit(redisCache, cfg.RateLimit.RequestsPerMinute),

		HealthHandler:         handler.NewHealthHandler(pgStore, redisCache),
		RecommendationHandler: handler.NewRecommendationHandler(pipeline),
		WeatherHandler:        handler.NewWeatherHandler(weatherClient, resolver),
		PhotoDownloadHandler:  handler.NewPhotoDownloadHandler(finder),
		InitiateAnalysis:      handler.NewInitiateAnalysisHandler(analyzer),
		AnalysisStatus:        handler.NewAnalysisStatusHandler(analyzer),
		ListSubmissions:       handler.NewListSubmissionsHandler(pgStore),
		CreateSubmission:      handler.NewCreateSubmissionHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// writeTimeout covers the slowest recommendation: location and suggestion
// model calls, the weather call, then the longer of the product search and
// the photo chain (search-term model call plus Unsplash), plus slack for
// encoding the response.
func writeTimeout(cfg *config.Config) time.Duration {
	photoChain := cfg.AI.InferenceTimeout + cfg.Photos.Timeout
	return 2*cfg.AI.InferenceTimeout + cfg.Weather.Timeout + max(cfg.Search.Timeout, photoChain) + writeTimeoutSlack
}

// startQueue returns the configured analysis queue and a func that stops it.
// The asynq queue also starts an in-process worker server on the same Redis.
func startQueue(cfg *config.Config, worker *analysis.Worker) (analysis.Queue, func(), error) {
	if cfg.Analysis.Queue == "inline" {
		q := analysis.NewInlineQueue(worker)
		return q, q.Wait, nil
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url for asynq: %w", err)
	}

	client := asynq.NewClient(redisOpt)
	srv := asynq.NewServer(redisOpt, analysis.ServerConfig(cfg.Analysis.Concurrency))
	if err := srv.Start(analysis.NewServeMux(worker)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("start asynq server: %w", err)
	}
	slog.Info("analysis worker started", "concurrency", cfg.Analysis.Concurrency)

	stop := func() {
		srv.Shutdown()
		if err := client.Close(); err != nil {
			slog.Error("failed to close asynq client", "error", err)
		}
	}
	return analysis.NewAsynqQueue(client), stop, nil
}
