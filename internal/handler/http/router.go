package http

import (
	"log/slog"
	"net/http"

	"newsdesk/internal/handler/http/article"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/category"
	"newsdesk/internal/handler/http/comment"
	"newsdesk/internal/handler/http/feed"
	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/handler/http/user"
	"newsdesk/internal/observability/tracing"
	authSvc "newsdesk/internal/service/auth"
	artUC "newsdesk/internal/usecase/article"
	catUC "newsdesk/internal/usecase/category"
	cmtUC "newsdesk/internal/usecase/comment"
	feedUC "newsdesk/internal/usecase/feed"
	userUC "newsdesk/internal/usecase/user"
)

// Services are the use cases served over HTTP.
type Services struct {
	Auth       *authSvc.Service
	Users      *userUC.Service
	Articles   *artUC.Service
	Categories *catUC.Service
	Comments   *cmtUC.Service
	Feed       *feedUC.Engine
}

// RouterConfig holds the cross-cutting pieces of the HTTP surface.
type RouterConfig struct {
	Logger       *slog.Logger
	MaxBodyBytes int64
	// LoginLimiter, when set, rate limits POST /auth/login per client IP.
	LoginLimiter *RateLimiter
	Health       http.Handler
}

// NewRouter mounts every route and wraps the mux in the middleware chain:
// request ID, recover, logging, tracing, input limits, metrics.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	mux := http.NewServeMux()
	guard := auth.Guard{Auth: svc.Auth}

	var limit func(http.Handler) http.Handler
	if cfg.LoginLimiter != nil {
		limit = cfg.LoginLimiter.Limit
	}
	auth.Register(mux, svc.Auth, limit)
	user.Register(mux, svc.Users, guard)
	article.Register(mux, svc.Articles, guard)
	category.Register(mux, svc.Categories, guard)
	comment.Register(mux, svc.Comments, guard)
	feed.Register(mux, svc.Feed, guard)

	if cfg.Health != nil {
		mux.Handle("GET /health", cfg.Health)
	}
	mux.Handle("GET /metrics", MetricsHandler())

	return Chain(mux,
		requestid.Middleware,
		Recover(logger),
		Logging(logger),
		tracing.Middleware,
		InputLimits(maxBody),
		MetricsMiddleware,
	)
}
