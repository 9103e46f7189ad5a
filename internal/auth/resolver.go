package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

// CredentialResolver maps a token subject to an active user. It performs a
// single read per call and keeps no state between calls.
type CredentialResolver struct {
	logger *slog.Logger
	users  domain.UserFinder
}

func NewCredentialResolver(logger *slog.Logger, users domain.UserFinder) *CredentialResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &CredentialResolver{
		logger: logger,
		users:  users,
	}
}

func (r *CredentialResolver) Resolve(ctx context.Context, claims Claims) (domain.Identity, bool, error) {
	user, err := r.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, err
	}
	if !user.IsActive {
		return domain.Identity{}, false, nil
	}

	identity := user.Identity()
	r.logger.InfoContext(ctx, "user authenticated", "user_id", identity.ID)
	return identity, true, nil
}
