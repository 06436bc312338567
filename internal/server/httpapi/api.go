// Package httpapi exposes the auth service over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type AuthService interface {
	Register(ctx context.Context, in validation.Registration) (*models.User, error)
	Login(ctx context.Context, in validation.Login, ipAddress string) (string, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, token string) error
	ListActivity(ctx context.Context) ([]models.ActivityRow, error)
	Ping(ctx context.Context) error
}

type Options struct {
	// ProtectList requires a live token on GET /list.
	ProtectList bool
	// TrustProxyHeaders lets X-Forwarded-For/X-Real-IP replace the peer
	// address recorded for logins. Enable only behind a proxy that
	// overwrites those headers.
	TrustProxyHeaders bool
	// RequestTimeout bounds each request's context; zero disables it.
	RequestTimeout time.Duration
}

type API struct {
	service AuthService
	logger  logging.Logger
	metrics *Metrics
	opts    Options
}

func New(service AuthService, logger logging.Logger, metrics *Metrics, opts Options) *API {
	return &API{
		service: service,
		logger:  logger.With("module", "http"),
		metrics: metrics,
		opts:    opts,
	}
}

// Handler builds the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if a.opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Instrument)
	if a.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.opts.RequestTimeout))
	}

	r.Post("/sign-up", a.SignUp)
	r.Post("/sign-in", a.SignIn)
	r.Post("/sign-out", a.SignOut)
	r.Get("/list", a.List)

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	return r
}
