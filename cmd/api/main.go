package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/careswap-app/careswap-backend/api/routes"
	"github.com/careswap-app/careswap-backend/internal/cron"
	"github.com/careswap-app/careswap-backend/internal/devices"
	"github.com/careswap-app/careswap-backend/internal/matching"
	"github.com/careswap-app/careswap-backend/internal/notifications"
	"github.com/careswap-app/careswap-backend/internal/reviews"
	"github.com/careswap-app/careswap-backend/internal/shifts"
	"github.com/careswap-app/careswap-backend/pkg/config"
	"github.com/careswap-app/careswap-backend/pkg/db"
	"github.com/careswap-app/careswap-backend/pkg/logger"
	"github.com/careswap-app/careswap-backend/pkg/migrate"
	"github.com/careswap-app/careswap-backend/pkg/outbox"
	"github.com/careswap-app/careswap-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	scorer, err := matching.NewClient(cfg.Matching, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create matching scorer", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	shiftsRepo := shifts.NewRepository(dbClient.DB())

	shiftService, err := shifts.NewService(shiftsRepo, dbClient, outboxService, scorer)
	if err != nil {
		logg.Error(context.Background(), "failed to create shift service", err)
		os.Exit(1)
	}
	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}
	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}
	deviceService, err := devices.NewService(devices.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create device service", err)
		os.Exit(1)
	}

	// The cron route runs the same sweep the cron worker schedules; both paths
	// converge on the sweep's per-row idempotency guards.
	sweepJob, err := cron.NewShiftSweepJob(cron.ShiftSweepJobParams{
		Logger:         logg,
		DB:             dbClient,
		Shifts:         shiftsRepo,
		Outbox:         outboxService,
		ReminderLead:   cfg.Cron.ReminderLead,
		ReminderWindow: cfg.Cron.ReminderWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shift sweep job", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			DB:            dbClient,
			Redis:         redisClient,
			Shifts:        shiftService,
			Reviews:       reviewService,
			Notifications: notificationService,
			Devices:       deviceService,
			Sweeper:       sweepJob,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
