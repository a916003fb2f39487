package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/fintera-obligations/docs" // Swagger docs
	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/database"
	"github.com/sjperalta/fintera-obligations/internal/handlers"
	"github.com/sjperalta/fintera-obligations/internal/jobs"
	"github.com/sjperalta/fintera-obligations/internal/middleware"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/services"
	"github.com/sjperalta/fintera-obligations/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Fintera Obligations API
// @version 1.0
// @description Obligation and installment scheduling engine

// @host localhost:8081
// @BasePath /api/v1
// @schemes http
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Database schema up to date")
	}

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg, db)

	if err := scheduleJobs(worker, svcs, cfg); err != nil {
		logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stops the cron scheduler and cancels running jobs
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/api/v1/health"))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.AuditContext())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.RegisterRoutes(router.Group("/api/v1"))

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) error {
	if cfg.SweepSchedule != "" {
		if err := worker.ScheduleCron("overdue_sweep", cfg.SweepSchedule, func(ctx context.Context) error {
			result, err := svcs.Sweep.Run(ctx, time.Now())
			if err != nil {
				return err
			}
			logger.Info("[Job] Overdue sweep finished",
				"transitioned", result.Transitioned,
				"scanned", result.ObligationsScanned,
				"failed", result.ObligationsFailed)
			return nil
		}); err != nil {
			return err
		}
	}

	if cfg.ExtendSchedule != "" {
		if err := worker.ScheduleCron("extend_recurring", cfg.ExtendSchedule, func(ctx context.Context) error {
			added, err := svcs.Generator.ExtendAll(ctx, time.Now())
			if err != nil {
				return err
			}
			logger.Info("[Job] Recurring schedules extended", "added", added)
			return nil
		}); err != nil {
			return err
		}
	}

	// Catch up on anything that lapsed while the service was down
	worker.EnqueueAsync("startup_sweep", func(ctx context.Context) error {
		_, err := svcs.Sweep.Run(ctx, time.Now())
		return err
	})
	worker.Enqueue("startup_extend", func(ctx context.Context) error {
		_, err := svcs.Generator.ExtendAll(ctx, time.Now())
		return err
	})

	logger.Info("Scheduled recurring jobs", "schedules", len(worker.Schedules()))
	return nil
}
