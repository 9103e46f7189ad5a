package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Flarenzy/simple-auth-api/internal/auth"
)

// authMiddleware rejects every failed authentication with the same 401 body
// so callers cannot tell a bad token from a disabled or unknown account.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, ok := bearerToken(r)
		if !ok {
			a.unauthorized(w, r, "missing token")
			return
		}

		identity, err := a.Auth.Authenticate(ctx, token)
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			a.unauthorized(w, r, "invalid token")
			return
		case errors.Is(err, auth.ErrUnauthenticated):
			a.unauthorized(w, r, "unknown or inactive user")
			return
		case err != nil:
			a.Logger.ErrorContext(ctx, "authenticating request", "err", err.Error(), "client_ip", a.clientIP(r))
			a.writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, identity)))
	})
}

func (a *API) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	a.Logger.DebugContext(r.Context(), "request rejected", "reason", reason, "client_ip", a.clientIP(r), "path", r.URL.Path)
	a.writeError(w, r, http.StatusUnauthorized, "unauthorized")
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
