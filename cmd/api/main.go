package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hanjob/resume-api/config"
	"github.com/hanjob/resume-api/internal/cache"
	"github.com/hanjob/resume-api/internal/database/postgres"
	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/handlers"
	"github.com/hanjob/resume-api/internal/middleware"
	"github.com/hanjob/resume-api/internal/repository"
	"github.com/hanjob/resume-api/internal/services"
	"github.com/hanjob/resume-api/pkg/db"
	"github.com/hanjob/resume-api/pkg/httpclient"
	"github.com/hanjob/resume-api/pkg/jwt"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
	"github.com/hanjob/resume-api/pkg/profiling"
	"github.com/hanjob/resume-api/pkg/storage"
	"github.com/hanjob/resume-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting resume API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.Bool("offline", cfg.Database.WorkOffline),
	)

	tracerShutdown, err := tracing.InitTracer(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	metrics.RecordInfrastructureMetrics(appCtx)

	// Draft repository: PostgreSQL, or memory when working offline.
	// Migrations run separately via cmd/migrate.
	var repo repository.DraftRepository
	checks := map[string]handlers.ReadinessCheck{}
	if cfg.Database.WorkOffline {
		logger.Warn("DB_WORK_OFFLINE is set: drafts are kept in memory only")
		repo = repository.NewMemoryDraftRepository()
	} else {
		pool, poolErr := db.NewPool(appCtx, db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if poolErr != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(poolErr))
		}
		defer db.Close(pool)

		client := postgres.NewClient(pool)
		pgRepo := repository.NewPostgresDraftRepository(client)
		repo = pgRepo
		checks["database"] = client.Ping
		checks["database_breaker"] = pgRepo.Ready
	}

	objectStore, err := newObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	httpClient := httpclient.NewStandardClient()
	tokens := jwt.NewTokenManager(cfg.DraftSession.JWTSecret, cfg.DraftSession.JWTIssuer, cfg.DraftSession.TTL())
	sessions := cache.NewSessionCache(cfg.Drafts.SessionIdleTTL())

	persister := services.NewDraftPersister(repo, cfg.EventTriggers.ResumeSubmittedTriggerURL, httpClient)
	attachments := services.NewAttachmentService(repo, objectStore)
	sessionService := services.NewDraftSessionService(repo, persister, attachments, sessions, tokens, draft.Options{
		AutosaveDelay: cfg.Drafts.AutosaveDelay(),
		MessageTTL:    cfg.Drafts.MessageTTL(),
	})

	cookie := middleware.CookieConfig{
		Domain:     cfg.DraftSession.CookieDomain,
		Secure:     cfg.DraftSession.CookieSecure,
		TTLSeconds: int(cfg.DraftSession.TTL().Seconds()),
	}

	gin.SetMode(cfg.Server.GinMode)
	router := newRouter(routerDeps{
		cfg:               cfg,
		tokens:            tokens,
		cookie:            cookie,
		generalLimiter:    middleware.NewRateLimiter(appCtx, rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
		uploadLimiter:     middleware.NewRateLimiter(appCtx, 1, 5), // 1 upload/sec, burst of 5
		healthHandler:     handlers.NewHealthHandler(checks),
		resumeHandler:     handlers.NewResumeHandler(sessionService, cookie),
		attachmentHandler: handlers.NewAttachmentHandler(sessionService),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second, // uploads of up to 10MB
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stops autosave timers and cancels uploads still running.
	sessions.Close()

	logger.Info("Server exited")
}

func newObjectStore(cfg config.StorageConfig) (storage.ObjectStore, error) {
	if !cfg.UsesS3() {
		logger.Info("Storing attachments on local disk", zap.String("dir", cfg.LocalDir))
		return storage.NewLocalStore(cfg.LocalDir)
	}
	return storage.NewS3Client(storage.S3Config{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.BucketName,
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
	})
}
