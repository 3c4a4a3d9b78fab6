// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_4_learn_progress/internal/config"
	"go_4_learn_progress/internal/handlers"
	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/repository"
	"go_4_learn_progress/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	logger.Info("Application starting...", slog.String("version", config.AppVersion))

	db, closeDB, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrateIfEnabled(ctx, cfg, db, logger); err != nil {
		return err
	}

	cache, closeCache := newCurriculumCache(ctx, cfg, logger)
	defer closeCache()

	router := newRouter(cfg, db, cache, logger)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server...")
	case err := <-errCh:
		logger.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}
	logger.Info("Server exiting")
	return nil
}

// redis.addr が空なら何もしないキャッシュを返す
func newCurriculumCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.CurriculumCache, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis address not set, curriculum cache disabled")
		return repository.NewNopCurriculumCache(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// 読み書きの失敗はDBへのフォールバックになるので起動は続ける
		logger.Warn("Redis ping failed", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing redis client", slog.Any("error", err))
		}
	}
	return repository.NewRedisCurriculumCache(client, cfg.Redis.TTL), closeFn
}

func newRouter(cfg *config.Config, db *gorm.DB, cache repository.CurriculumCache, logger *slog.Logger) http.Handler {
	// Dependency Injection
	currRepo := repository.NewGormCurriculumRepository()
	enrollRepo := repository.NewGormEnrollmentRepository()
	progRepo := repository.NewGormProgressRepository()
	quizRepo := repository.NewGormQuizRepository()
	attemptRepo := repository.NewGormAttemptRepository()

	curriculumService := service.NewCurriculumService(db, currRepo, cache)
	progressService := service.NewProgressService(db, enrollRepo, currRepo, progRepo, curriculumService)
	quizService := service.NewQuizService(db, enrollRepo, currRepo, quizRepo, attemptRepo, cfg.Quiz.ShuffleSeed)
	gatingService := service.NewGatingService(db, enrollRepo, currRepo, attemptRepo, progressService)
	analyticsService := service.NewAnalyticsService(db, enrollRepo, currRepo, attemptRepo)

	h := &handlers.Handlers{
		Curriculum: handlers.NewCurriculumHandler(curriculumService),
		Progress:   handlers.NewProgressHandler(progressService),
		Quiz:       handlers.NewQuizHandler(quizService),
		Access:     handlers.NewAccessHandler(gatingService, analyticsService),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Learner-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", handlers.HealthHandler(func(ctx context.Context) error {
		return repository.Ping(ctx, db)
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			logger.Info("Applying JWT authentication middleware")
			r.Use(middleware.JWTAuthMiddleware(cfg.JWT.SecretKey))
		} else {
			logger.Warn("Authentication disabled, learner ID is taken from X-Learner-ID header")
			r.Use(middleware.DevLearnerContextMiddleware)
		}
		handlers.RegisterRoutes(r, h)
	})

	return r
}
