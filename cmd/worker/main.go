package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stayloft/stayloft/internal/app"
	"github.com/stayloft/stayloft/internal/platform/db"
	"github.com/stayloft/stayloft/internal/reports"
	"github.com/stayloft/stayloft/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	reportRepo := reports.NewPGRepository(pool)
	reportService := reports.NewService(reportRepo, logger)
	resolver := reports.NewResolver()

	refreshJob := jobs.NewReportRefreshJob(reportService, resolver, logger, nil)
	sweepJob := jobs.NewOverdueSweepJob(reports.NewOverdueSynchronizer(reportRepo, logger), logger, nil)

	weeklyTask, err := jobs.NewReportRefreshTask(jobs.ReportRefreshPayload{Kind: "weekly"})
	if err != nil {
		logger.Error("build weekly refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	monthlyTask, err := jobs.NewReportRefreshTask(jobs.ReportRefreshPayload{Kind: "monthly"})
	if err != nil {
		logger.Error("build monthly refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskOverdueSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Mondays 01:30 UTC, right after the weekly window closes.
			{Spec: "30 1 * * 1", Task: weeklyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			// First of the month 02:00 UTC for the month just ended.
			{Spec: "0 2 1 * *", Task: monthlyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			// Nightly overdue sweep keeps statuses honest between refreshes.
			{Spec: "15 0 * * *", Task: jobs.NewOverdueSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
