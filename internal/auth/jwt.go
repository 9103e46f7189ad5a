package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

const (
	clockLeeway      = 5 * time.Second
	jwksProbeTimeout = 5 * time.Second
)

var (
	hmacMethods = []string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}
	jwksMethods = []string{
		jwt.SigningMethodRS256.Alg(),
		jwt.SigningMethodRS384.Alg(),
		jwt.SigningMethodRS512.Alg(),
		jwt.SigningMethodPS256.Alg(),
		jwt.SigningMethodPS384.Alg(),
		jwt.SigningMethodPS512.Alg(),
		jwt.SigningMethodES256.Alg(),
		jwt.SigningMethodES384.Alg(),
		jwt.SigningMethodES512.Alg(),
		jwt.SigningMethodEdDSA.Alg(),
	}
)

type keySource interface {
	Keyfunc(token *jwt.Token) (any, error)
}

type secretKey []byte

func (s secretKey) Keyfunc(*jwt.Token) (any, error) {
	return []byte(s), nil
}

type jwtAuthenticator struct {
	issuer   string
	audience string
	keys     keySource
	methods  []string
	resolver IdentityResolver
}

// NewAuthenticator verifies bearer tokens with a shared secret or with the
// keys published at cfg.JWKSURL, and hands the verified claims to resolver.
// Exactly one key source must be configured.
func NewAuthenticator(ctx context.Context, cfg Config, resolver IdentityResolver) (Authenticator, error) {
	if resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	if cfg.Secret != "" && cfg.JWKSURL != "" {
		return nil, ErrAmbiguousKeySource
	}

	a := &jwtAuthenticator{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		resolver: resolver,
	}

	switch {
	case cfg.JWKSURL != "":
		if err := probeJWKS(ctx, cfg.JWKSURL); err != nil {
			return nil, fmt.Errorf("fetch jwks from %s: %w", cfg.JWKSURL, err)
		}
		kf, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("fetch jwks from %s: %w", cfg.JWKSURL, err)
		}
		a.keys = kf
		a.methods = jwksMethods
	case cfg.Secret != "":
		a.keys = secretKey(cfg.Secret)
		a.methods = hmacMethods
	default:
		return nil, errors.New("either a jwt secret or a jwks url is required")
	}

	return a, nil
}

func (a *jwtAuthenticator) Authenticate(ctx context.Context, bearerToken string) (domain.Identity, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(clockLeeway),
		jwt.WithValidMethods(a.methods),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.ParseWithClaims(bearerToken, claims, a.keys.Keyfunc, opts...)
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	identity, ok, err := a.resolver.Resolve(ctx, *claims)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	if !ok {
		return domain.Identity{}, ErrUnauthenticated
	}

	return identity, nil
}

// probeJWKS requires the key endpoint to answer 200 before startup continues.
func probeJWKS(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, jwksProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}
	return nil
}
