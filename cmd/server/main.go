package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/client"
	"csacademy/interview/internal/config"
	"csacademy/interview/internal/handlers"
	"csacademy/interview/internal/history"
	"csacademy/interview/internal/interview"
	"csacademy/interview/internal/jobs"
	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/metrics"
	"csacademy/interview/internal/routers"
	"csacademy/interview/internal/sessions"
	"csacademy/interview/internal/utils"
)

// controllers unused for this long are dropped
const sessionIdleTTL = 2 * time.Hour

type app struct {
	router    *chi.Mux
	hub       *sessions.Hub
	retention *jobs.RetentionJob
	db        *gorm.DB
	rdb       *redis.Client
}

func (a *app) close() {
	if a.retention != nil {
		a.retention.Stop()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// buildApp wires every component from cfg. History and redis are optional;
// a failure to reach either is fatal only when it was asked for.
func buildApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("a JWT secret is required to serve the local API")
	}

	catalog, err := messages.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load message catalog: %w", err)
	}

	a := &app{}
	probes := make(map[string]handlers.Pinger)

	tokenStores := func(string) auth.TokenStore { return auth.NewMemoryTokenStore("") }
	if cfg.TokenStore == config.TokenStoreRedis {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rdb := a.rdb
		tokenStores = func(userID string) auth.TokenStore {
			return auth.NewRedisTokenStore(rdb, cfg.TokenKey+":"+userID, cfg.TokenTTL)
		}
		probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var store *history.Store
	a.db, err = history.Open(cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		a.close()
		return nil, err
	}
	if a.db != nil {
		store = history.NewStore(a.db, logger)
		db := a.db
		probes["history_db"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}

		a.retention = jobs.NewRetentionJob(store, jobs.RetentionConfig{
			Schedule:  cfg.HistoryPruneSchedule,
			Retention: cfg.HistoryRetention,
		}, logger)
	}

	opts := []interview.Option{
		interview.WithLogger(logger),
		interview.WithCatalog(catalog),
		interview.WithInterviewType(cfg.InterviewType),
		interview.WithDefaultDifficulty(cfg.DefaultDifficulty),
		interview.WithTotalQuestions(cfg.TotalQuestions),
	}
	if store != nil {
		opts = append(opts, interview.WithRecorder(store))
	}

	httpClient := &http.Client{Timeout: cfg.ClientTimeout}
	verifier := auth.NewVerifier(cfg.JWTSecret)
	a.hub = sessions.NewHub(func(tokens auth.TokenStore) client.Backend {
		return client.NewClient(cfg.APIBaseURL, tokens,
			client.WithHTTPClient(httpClient),
			client.WithLogger(logger))
	}, tokenStores, verifier, sessionIdleTTL, opts...)

	var historyReader handlers.HistoryReader
	if store != nil {
		historyReader = store
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	router.Use(metrics.Middleware("interview"))
	// backend calls may take up to the client timeout
	router.Use(middleware.Timeout(cfg.ClientTimeout + 5*time.Second))

	routers.HealthRoutes(router, handlers.NewHealthHandler(catalog, cfg, probes))
	routers.InterviewRoutes(router,
		handlers.NewInterviewHandler(a.hub, catalog, logger),
		handlers.NewHistoryHandler(historyReader, logger),
		verifier, logger)

	a.router = router
	return a, nil
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("api_url", cfg.APIBaseURL),
		zap.String("token_store", cfg.TokenStore),
		zap.String("history_driver", cfg.HistoryDriver))

	a, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	defer a.close()

	if a.retention != nil {
		if err := a.retention.Start(); err != nil {
			logger.Error("Failed to start history retention job", zap.Error(err))
		}
	}

	evictCtx, stopEvict := context.WithCancel(context.Background())
	defer stopEvict()
	go a.hub.Run(evictCtx, 10*time.Minute)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ClientTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
