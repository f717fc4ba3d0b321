// Command server starts the sermon evaluator HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/sermon-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/ai/tokencount"
	redcache "github.com/fairyhunter13/sermon-evaluator/internal/adapter/cache/redis"
	pdfsink "github.com/fairyhunter13/sermon-evaluator/internal/adapter/docsink/pdf"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/identity"
	httpserver "github.com/fairyhunter13/sermon-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/sermon-evaluator/internal/app"
	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/usecase"
)

// redisAdapter adapts *goredis.Client to app.RedisClient.
type redisAdapter struct{ *goredis.Client }

func (r redisAdapter) Ping(ctx context.Context) app.RedisPingResult {
	return r.Client.Ping(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, and analysis instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	sermonRepo := postgres.NewSermonRepo(pool)
	profileRepo := postgres.NewProfileRepo(pool)

	// Redis-backed recommendation cache
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	recCache := redcache.New(rdb, cfg.RecommendationCacheTTL)

	// Identity verifier from configured API keys
	verifier, err := identity.NewVerifier(cfg.APIKeys)
	if err != nil {
		slog.Error("api key configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}

	// Rubric: file-based or embedded default
	rubric, err := config.LoadRubric(cfg.RubricPath)
	if err != nil {
		slog.Error("rubric load failed", slog.Any("error", err), slog.String("path", cfg.RubricPath))
		os.Exit(1)
	}

	// AI client, with the caller-side retry policy layered on when enabled.
	var aicl domain.AIClient = ai.New(cfg)
	if cfg.AIRetryEnabled {
		aicl = ai.NewRetryClient(aicl, cfg)
		slog.Info("ai retry policy enabled")
	}

	// Usecases
	sermonSvc := usecase.NewSermonService(sermonRepo)
	analyzeSvc := usecase.NewAnalyzeService(sermonRepo, profileRepo, aicl, recCache, rubric, cfg.AIMaxTokens)
	recommendSvc := usecase.NewRecommendService(sermonRepo, profileRepo, recCache)
	reportSvc := usecase.NewReportService(sermonRepo, tokencount.NewLengthCounter(cfg.AIModel))

	// Readiness checks
	dbCheck, redisCheck := app.BuildReadinessChecks(pool, redisAdapter{rdb})

	// HTTP server
	srv := httpserver.NewServer(cfg, sermonSvc, analyzeSvc, recommendSvc, reportSvc, pdfsink.New(), dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv, verifier)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
	_ = rdb.Close()
	pool.Close()
}
