package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/odyssey-erp/ekonum/internal/app"
	"github.com/odyssey-erp/ekonum/internal/forecast"
	jobmetrics "github.com/odyssey-erp/ekonum/internal/jobs"
	"github.com/odyssey-erp/ekonum/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open record store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	redisClient := app.ConnectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	windows, err := app.ParseWarmupWindows(cfg.WarmupWindows, forecast.FiscalYearOf(time.Now().UTC()))
	if err != nil {
		logger.Error("parse warmup windows", slog.Any("error", err))
		os.Exit(1)
	}
	jobWindows := make([]jobs.WarmupWindow, 0, len(windows))
	for _, w := range windows {
		jobWindows = append(jobWindows, jobs.WarmupWindow{StartYear: w.StartYear, Years: w.Years})
	}

	forecastService := app.NewForecastService(store, redisClient, cfg, logger, nil)
	warmupJob := jobs.NewForecastWarmupJob(forecastService, jobWindows, cfg.InitialCash, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{}, asynq.Queue(cfg.WorkerQueue))
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpt, err := app.QueueRedisOpt(cfg)
	if err != nil {
		logger.Error("resolve queue redis", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpt,
		Logger:      logger,
		Queue:       cfg.WorkerQueue,
		Concurrency: cfg.WorkerParallel,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskForecastWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("queue", cfg.WorkerQueue), slog.Int("windows", len(jobWindows)))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
