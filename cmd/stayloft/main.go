package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stayloft/stayloft/internal/app"
	"github.com/stayloft/stayloft/internal/auth"
	"github.com/stayloft/stayloft/internal/expenses"
	"github.com/stayloft/stayloft/internal/members"
	"github.com/stayloft/stayloft/internal/observability"
	"github.com/stayloft/stayloft/internal/payments"
	"github.com/stayloft/stayloft/internal/platform/cache"
	"github.com/stayloft/stayloft/internal/platform/db"
	"github.com/stayloft/stayloft/internal/reports"
	reporthttp "github.com/stayloft/stayloft/internal/reports/http"
	"github.com/stayloft/stayloft/internal/rooms"
	"github.com/stayloft/stayloft/internal/tenants"
	"github.com/stayloft/stayloft/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, cfg.AuthTokenTTL)
	authHandler := auth.NewHandler(authService)

	tenantService := tenants.NewService(tenants.NewPGRepository(dbpool), logger)
	roomService := rooms.NewService(rooms.NewPGRepository(dbpool), logger)
	memberService := members.NewService(members.NewPGRepository(dbpool), logger)
	paymentService := payments.NewService(payments.NewPGRepository(dbpool), logger)
	expenseService := expenses.NewService(expenses.NewPGRepository(dbpool), logger)

	reportService := reports.NewService(reports.NewPGRepository(dbpool), logger)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	enqueueRefresh := func(ctx context.Context, kind string, period, year int) error {
		_, err := jobClient.EnqueueReportRefresh(ctx, jobs.ReportRefreshPayload{
			Kind:   kind,
			Period: period,
			Year:   year,
		})
		return err
	}
	reportHandler := reporthttp.NewHandler(reportService, enqueueRefresh, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		TenantHandler:  tenants.NewHandler(tenantService),
		RoomHandler:    rooms.NewHandler(roomService),
		MemberHandler:  members.NewHandler(memberService),
		PaymentHandler: payments.NewHandler(paymentService),
		ExpenseHandler: expenses.NewHandler(expenseService),
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
