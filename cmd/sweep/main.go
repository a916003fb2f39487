// Command sweep runs the overdue sweep and the recurring extension once and exits.
// It is meant for an external scheduler (cron, Kubernetes CronJob) when the API
// runs with its own schedules disabled.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/database"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/services"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

func main() {
	skipExtend := flag.Bool("skip-extend", false, "only run the overdue sweep")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort the run after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Environment}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		}
		defer sentry.Flush(5 * time.Second)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	svcs := services.NewServices(repository.NewRepositories(db), nil, cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if code := run(ctx, svcs, !*skipExtend); code != 0 {
		// deferred flushes do not run on os.Exit
		cancel()
		stop()
		sentry.Flush(5 * time.Second)
		os.Exit(code)
	}
}

func run(ctx context.Context, svcs *services.Services, extend bool) int {
	now := time.Now()

	if extend {
		added, err := svcs.Generator.ExtendAll(ctx, now)
		if err != nil {
			logger.Error("Recurring extension failed", "error", err)
			sentry.CaptureException(err)
			return 1
		}
		logger.Info("Recurring schedules extended", "added", added)
	}

	result, err := svcs.Sweep.Run(ctx, now)
	if err != nil {
		logger.Error("Overdue sweep aborted", "error", err)
		sentry.CaptureException(err)
		return 1
	}
	logger.Info("Overdue sweep finished",
		"transitioned", result.Transitioned,
		"scanned", result.ObligationsScanned,
		"failed", result.ObligationsFailed)

	if result.ObligationsFailed > 0 {
		return 2
	}
	return 0
}
