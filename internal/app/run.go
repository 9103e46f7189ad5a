package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Flarenzy/simple-auth-api/internal/auth"
	appdb "github.com/Flarenzy/simple-auth-api/internal/db"
	"github.com/Flarenzy/simple-auth-api/internal/domain"
	apihttp "github.com/Flarenzy/simple-auth-api/internal/http"
)

const defaultShutdownTimeout = 5 * time.Second

func Run(ctx context.Context, cfg Config) error {
	listener, err := net.Listen("tcp", net.JoinHostPort("", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, listener)
}

// Serve runs the API on listener until ctx is cancelled. The listener is
// closed on return.
func Serve(ctx context.Context, cfg Config, listener net.Listener) error {
	logger := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	pool, err := appdb.NewPool(ctx, cfg.DSN)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := appdb.Migrate(ctx, pool); err != nil {
			_ = listener.Close()
			return err
		}
	}

	users := domain.NewLoggingUserFinder(logger, appdb.NewUserRepository(pool))
	authenticator, err := newAuthenticator(ctx, cfg, auth.NewCredentialResolver(logger, users))
	if err != nil {
		_ = listener.Close()
		return err
	}

	proxies, err := apihttp.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		_ = listener.Close()
		return err
	}

	api := apihttp.NewAPI(logger, pool, authenticator, proxies)

	server := &http.Server{
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newAuthenticator(ctx context.Context, cfg Config, resolver auth.IdentityResolver) (auth.Authenticator, error) {
	return auth.NewAuthenticator(ctx, cfg.authConfig(), resolver)
}
