package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go4.org/netipx"

	"github.com/Flarenzy/simple-auth-api/internal/auth"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type API struct {
	Logger *slog.Logger
	Health HealthChecker
	Auth   auth.Authenticator

	trustedProxies *netipx.IPSet
}

func NewAPI(logger *slog.Logger, health HealthChecker, authenticator auth.Authenticator, trustedProxies *netipx.IPSet) *API {
	return &API{
		Logger:         logger,
		Health:         health,
		Auth:           authenticator,
		trustedProxies: trustedProxies,
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReadyz)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/me", a.handleGetMe)
	})

	return r
}
