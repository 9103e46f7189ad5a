package auth

import (
	"context"
	"errors"

	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated covers both unknown and disabled users.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrAmbiguousKeySource = errors.New("jwt secret and jwks url are mutually exclusive")
)

type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (domain.Identity, error)
}

// IdentityResolver turns verified claims into an identity. A false result
// with a nil error means the request must be rejected.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims Claims) (domain.Identity, bool, error)
}

type ResolverFunc func(ctx context.Context, claims Claims) (domain.Identity, bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, claims Claims) (domain.Identity, bool, error) {
	return f(ctx, claims)
}
