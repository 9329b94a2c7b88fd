package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"newsdesk/internal/config"
	"newsdesk/internal/domain/entity"
	hhttp "newsdesk/internal/handler/http"
	"newsdesk/internal/infra/adapter/persistence/memory"
	pgRepo "newsdesk/internal/infra/adapter/persistence/postgres"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/infra/notifier"
	"newsdesk/internal/infra/worker"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/circuitbreaker"
	authSvc "newsdesk/internal/service/auth"
	artUC "newsdesk/internal/usecase/article"
	catUC "newsdesk/internal/usecase/category"
	cmtUC "newsdesk/internal/usecase/comment"
	feedUC "newsdesk/internal/usecase/feed"
	userUC "newsdesk/internal/usecase/user"
)

// レート制限: ログインは IP ごとに1分間に5リクエストまで
const (
	loginRateLimit  = 5
	loginRateWindow = time.Minute
)

// dispatchJobTimeout bounds one scheduled flush of the notification queue.
const dispatchJobTimeout = 5 * time.Minute

// tokenStore issues session tokens and can forget expired ones.
type tokenStore interface {
	authSvc.TokenIssuer
	worker.Purger
}

// app holds everything main has to shut down.
type app struct {
	logger     *slog.Logger
	server     *http.Server
	database   *sql.DB
	scheduler  *worker.Scheduler
	dispatcher *worker.Dispatcher
	shutdown   func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	run(ctx, cfg, a)
}

// setup builds storage, services, the notification pipeline and the HTTP server.
func setup(ctx context.Context, cfg config.App, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger, shutdown: tracing.Init()}
	version := config.GetEnvString("VERSION", "dev")

	var (
		articles repository.ArticleRepository = memory.NewArticleRepo()
		breakers []hhttp.Breaker
	)
	if cfg.StorageDriver == config.StoragePostgres {
		pool := db.DefaultPool()
		pool.MaxOpen = cfg.DBMaxOpenConns
		pool.MaxIdle = cfg.DBMaxIdleConns
		pool.MaxLifetime = cfg.DBConnMaxLifetime
		database, err := db.Open(ctx, cfg.DatabaseURL, pool)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			return nil, err
		}
		guarded := circuitbreaker.GuardDB(database)
		articles = pgRepo.NewArticleRepo(guarded)
		breakers = append(breakers, guarded)
		a.database = database
	}
	logger.Info("storage initialized", slog.String("driver", cfg.StorageDriver))

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	catalog.Override(cfg.CatalogCountries, cfg.CatalogCategories)

	channels := notificationChannels(cfg, logger)
	for _, ch := range channels {
		if b, ok := ch.(hhttp.Breaker); ok {
			breakers = append(breakers, b)
		}
	}
	var feedNotifier notifier.Notifier = notifier.NoOp{}
	if len(channels) > 0 {
		feedNotifier = channels
	}

	comments := memory.NewCommentRepo()
	engine := &feedUC.Engine{
		Subs:          memory.NewSubscriptionRepo(),
		Articles:      articles,
		Notifier:      feedNotifier,
		MaxConcurrent: cfg.NotifyMaxConcurrent,
		Timeout:       cfg.NotifyTimeout,
	}
	a.dispatcher = &worker.Dispatcher{
		Feed:   engine,
		Queued: cfg.NotifySchedule != "",
		Logger: logger,
	}

	users := &userUC.Service{Repo: memory.NewUserRepo(), Cost: cfg.BcryptCost}
	if err := seedAdmin(ctx, cfg, users, logger); err != nil {
		return nil, err
	}

	var tokens tokenStore
	if cfg.JWTSecret != "" {
		tokens = authSvc.NewJWTIssuer([]byte(cfg.JWTSecret), cfg.SessionTTL)
		logger.Info("signed session tokens enabled")
	} else {
		tokens = authSvc.NewSessionStore(cfg.SessionTTL)
	}
	limiter := hhttp.NewRateLimiter(loginRateLimit, loginRateWindow)
	health := &hhttp.HealthHandler{
		DB:       a.database,
		Storage:  cfg.StorageDriver,
		Version:  version,
		Breakers: breakers,
		Queue:    a.dispatcher,
	}

	handler := hhttp.NewRouter(hhttp.Services{
		Auth:  &authSvc.Service{Users: users, Tokens: tokens},
		Users: users,
		Articles: &artUC.Service{
			Repo:      articles,
			Comments:  comments,
			Catalog:   catalog,
			Publisher: a.dispatcher,
		},
		Categories: &catUC.Service{Repo: memory.NewCategoryRepo()},
		Comments:   &cmtUC.Service{Repo: comments, Articles: articles},
		Feed:       engine,
	}, hhttp.RouterConfig{
		Logger:       logger,
		MaxBodyBytes: cfg.MaxBodyBytes,
		LoginLimiter: limiter,
		Health:       health,
	})

	loc, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		return nil, err
	}
	a.scheduler = worker.NewScheduler(logger, loc, nil)
	health.Scheduler = a.scheduler
	if a.dispatcher.Queued {
		if err := a.scheduler.Add(worker.JobDispatch, cfg.NotifySchedule, dispatchJobTimeout, worker.DispatchJob(a.dispatcher)); err != nil {
			return nil, err
		}
	} else {
		logger.Info("notifications are dispatched immediately")
	}
	if err := a.scheduler.Add(worker.JobSessionPurge, cfg.SessionPurgeEvery, time.Minute,
		worker.PurgeJob(logger, tokens, worker.PurgerFunc(limiter.Cleanup))); err != nil {
		return nil, err
	}

	a.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}
	logger.Info("server configured",
		slog.String("addr", cfg.Addr),
		slog.String("version", version),
		slog.Any("notification_channels", channels.Names()))
	return a, nil
}

// notificationChannels returns the configured webhook channels.
func notificationChannels(cfg config.App, logger *slog.Logger) notifier.Fanout {
	var channels notifier.Fanout
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, notifier.NewSlack(notifier.WebhookConfig{
			Enabled:    true,
			WebhookURL: cfg.SlackWebhookURL,
			Timeout:    cfg.NotifyTimeout,
		}))
		logger.Info("Slack channel initialized")
	}
	if cfg.DiscordWebhookURL != "" {
		channels = append(channels, notifier.NewDiscord(notifier.WebhookConfig{
			Enabled:    true,
			WebhookURL: cfg.DiscordWebhookURL,
			Timeout:    cfg.NotifyTimeout,
		}))
		logger.Info("Discord channel initialized")
	}
	if len(channels) == 0 {
		logger.Info("notification channels disabled")
	}
	return channels
}

// seedAdmin creates the configured administrator unless it already exists.
func seedAdmin(ctx context.Context, cfg config.App, users *userUC.Service, logger *slog.Logger) error {
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is not set; no administrator account was created")
		return nil
	}
	_, err := users.Register(ctx, userUC.RegisterInput{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(entity.RoleAdministrator),
	})
	if errors.Is(err, entity.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("administrator account created", slog.String("username", cfg.AdminUsername))
	return nil
}

// run serves until ctx is cancelled, then shuts everything down in order.
func run(ctx context.Context, cfg config.App, a *app) {
	a.scheduler.Start()

	go func() {
		a.logger.Info("server starting", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	// 溜まっている通知は停止前に送り切る
	if a.dispatcher.Queued {
		if _, err := a.dispatcher.Flush(shutdownCtx); err != nil {
			a.logger.Error("final dispatch failed", slog.Any("error", err), slog.Int("pending", a.dispatcher.Pending()))
		}
	}
	if err := a.dispatcher.Wait(shutdownCtx); err != nil {
		a.logger.Error("in-flight notifications abandoned", slog.Any("error", err))
	}
	if err := a.shutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.logger.Error("failed to close database", slog.Any("error", err))
		}
	}
	a.logger.Info("server stopped")
}
