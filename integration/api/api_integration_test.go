//go:build integration

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	app "github.com/Flarenzy/simple-auth-api/internal/app"
	appdb "github.com/Flarenzy/simple-auth-api/internal/db"
	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

const (
	postgresPort   = "5432/tcp"
	testSecret     = "integration-secret"
	testIssuer     = "http://auth.integration"
	testAudience   = "simple-auth-api"
	containerReady = 2 * time.Minute
	httpReady      = 30 * time.Second
)

type integrationSuite struct {
	httpClient *http.Client
	baseURL    string

	postgres testcontainers.Container
	pool     *pgxpool.Pool
	users    domain.UserService

	apiCancel context.CancelFunc
	apiErrCh  chan error
}

var (
	suiteOnce   sync.Once
	suite       *integrationSuite
	suiteErr    error
	suiteClosed bool
)

func TestMain(m *testing.M) {
	code := m.Run()

	if suite != nil && !suiteClosed {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Minute)
		defer closeCancel()
		if err := suite.Close(closeCtx); err != nil {
			fmt.Printf("integration teardown failed: %v\n", err)
			if code == 0 {
				code = 1
			}
		}
		suiteClosed = true
	}

	os.Exit(code)
}

func TestAPIStartupFailsWhenJWKSIsUnavailable(t *testing.T) {
	s := mustSuite(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = app.Serve(ctx, app.Config{
		DSN:      s.pool.Config().ConnString(),
		Issuer:   testIssuer,
		JWKSURL:  "http://127.0.0.1:1/certs",
		Audience: testAudience,
	}, listener)
	if err == nil {
		t.Fatal("expected startup to fail when jwks cannot be reached")
	}
}

func TestInfrastructureAndAuthBoundaries(t *testing.T) {
	s := mustSuite(t)

	resp := s.get(t, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", resp.StatusCode)
	}
	if body := s.readBody(t, resp); strings.TrimSpace(body) != "ok" {
		t.Fatalf("expected ok body, got %q", body)
	}

	resp = s.get(t, "/readyz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /readyz, got %d", resp.StatusCode)
	}
	s.closeBody(t, resp)

	resp = s.get(t, "/api/v1/me", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", resp.StatusCode)
	}
	s.closeBody(t, resp)

	resp = s.get(t, "/api/v1/me", "not-a-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", resp.StatusCode)
	}
	s.closeBody(t, resp)
}

func TestActiveUserResolvesToSanitizedIdentity(t *testing.T) {
	s := mustSuite(t)

	user := s.mustCreateUser(t, domain.CreateUserInput{
		Email:     "ann@example.com",
		FirstName: "Ann",
		Password:  "correct horse",
	})

	resp := s.get(t, "/api/v1/me", s.mustToken(t, user.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for active user, got %d: %s", resp.StatusCode, s.readBody(t, resp))
	}

	var body map[string]any
	s.decodeJSON(t, resp, &body)
	if body["id"] != user.ID || body["firstName"] != "Ann" || body["email"] != "ann@example.com" {
		t.Fatalf("unexpected identity: %v", body)
	}
	for _, key := range []string{"password", "credentialHash", "authProvider", "isActive"} {
		if _, present := body[key]; present {
			t.Fatalf("identity must not contain %q", key)
		}
	}
}

func TestInactiveAndUnknownUsersAreRejectedIdentically(t *testing.T) {
	s := mustSuite(t)

	inactive := s.mustCreateUser(t, domain.CreateUserInput{
		Email:        "disabled@example.com",
		AuthProvider: "google",
		Inactive:     true,
	})

	inactiveResp := s.get(t, "/api/v1/me", s.mustToken(t, inactive.ID))
	unknownResp := s.get(t, "/api/v1/me", s.mustToken(t, "00000000-0000-0000-0000-000000000000"))

	if inactiveResp.StatusCode != http.StatusUnauthorized || unknownResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", inactiveResp.StatusCode, unknownResp.StatusCode)
	}
	inactiveBody := s.readBody(t, inactiveResp)
	unknownBody := s.readBody(t, unknownResp)
	if inactiveBody != unknownBody {
		t.Fatalf("rejection bodies differ: %q vs %q", inactiveBody, unknownBody)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := mustSuite(t)

	user := s.mustCreateUser(t, domain.CreateUserInput{
		Email:    "expired@example.com",
		Password: "correct horse",
	})

	claims := tokenClaims(user.ID)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	resp := s.get(t, "/api/v1/me", signToken(t, claims))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
	s.closeBody(t, resp)
}

func mustSuite(t *testing.T) *integrationSuite {
	t.Helper()

	suiteOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		suite, suiteErr = newIntegrationSuite(ctx)
	})
	if suiteErr != nil {
		t.Fatalf("integration setup failed: %v", suiteErr)
	}
	if suite == nil {
		t.Fatal("integration suite was not initialized")
	}

	return suite
}

func newIntegrationSuite(ctx context.Context) (*integrationSuite, error) {
	if err := os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true"); err != nil {
		return nil, fmt.Errorf("disable testcontainers ryuk: %w", err)
	}

	s := &integrationSuite{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	var err error
	s.postgres, err = startPostgres(ctx)
	if err != nil {
		return nil, err
	}

	dsn, err := buildPostgresDSN(ctx, s.postgres)
	if err != nil {
		_ = s.postgres.Terminate(ctx)
		return nil, err
	}

	s.pool, err = appdb.NewPool(ctx, dsn)
	if err != nil {
		_ = s.postgres.Terminate(ctx)
		return nil, err
	}
	if err := appdb.Migrate(ctx, s.pool); err != nil {
		s.pool.Close()
		_ = s.postgres.Terminate(ctx)
		return nil, err
	}
	s.users = domain.NewUserService(appdb.NewUserRepository(s.pool))

	if err := s.startAPI(ctx, dsn); err != nil {
		s.pool.Close()
		_ = s.postgres.Terminate(ctx)
		return nil, err
	}

	return s, nil
}

func (s *integrationSuite) startAPI(ctx context.Context, dsn string) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for api: %w", err)
	}

	s.baseURL = "http://" + listener.Addr().String()
	apiCtx, apiCancel := context.WithCancel(context.Background())
	s.apiCancel = apiCancel
	s.apiErrCh = make(chan error, 1)

	go func() {
		s.apiErrCh <- app.Serve(apiCtx, app.Config{
			DSN:             dsn,
			Migrate:         true,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			JWTSecret:       testSecret,
			Issuer:          testIssuer,
			Audience:        testAudience,
			LogLevel:        "debug",
		}, listener)
	}()

	return s.waitForAPIReady(ctx)
}

func (s *integrationSuite) waitForAPIReady(ctx context.Context) error {
	deadline := time.Now().Add(httpReady)
	for time.Now().Before(deadline) {
		select {
		case err := <-s.apiErrCh:
			if err != nil {
				return fmt.Errorf("api exited before becoming ready: %w", err)
			}
			return errors.New("api exited before becoming ready")
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/readyz", nil)
		if err != nil {
			return err
		}

		resp, err := s.httpClient.Do(req)
		if err == nil {
			s.closeBodyNoTest(resp)
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("timed out waiting for api at %s", s.baseURL)
}

func (s *integrationSuite) Close(ctx context.Context) error {
	var errs []error

	if s.apiCancel != nil {
		s.apiCancel()
		select {
		case err := <-s.apiErrCh:
			if err != nil {
				errs = append(errs, err)
			}
		case <-time.After(10 * time.Second):
			errs = append(errs, errors.New("timed out waiting for api shutdown"))
		}
	}

	if s.pool != nil {
		s.pool.Close()
	}

	if s.postgres != nil {
		if err := s.postgres.Terminate(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func startPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_DB":       "auth",
			"POSTGRES_USER":     "auth",
			"POSTGRES_PASSWORD": "auth",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(containerReady),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	return container, nil
}

func buildPostgresDSN(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return "", fmt.Errorf("postgres mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://auth:auth@%s:%s/auth?sslmode=disable", host, port.Port()), nil
}

func (s *integrationSuite) mustCreateUser(t *testing.T, input domain.CreateUserInput) domain.User {
	t.Helper()

	user, err := s.users.CreateUser(context.Background(), input)
	if err != nil {
		t.Fatalf("create user %s: %v", input.Email, err)
	}
	return user
}

func tokenClaims(subject string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": testIssuer,
		"sub": subject,
		"aud": testAudience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (s *integrationSuite) mustToken(t *testing.T, subject string) string {
	t.Helper()
	return signToken(t, tokenClaims(subject))
}

func (s *integrationSuite) get(t *testing.T, path string, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (s *integrationSuite) decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer s.closeBody(t, resp)

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json response, got %q", ct)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (s *integrationSuite) readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer s.closeBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func (s *integrationSuite) closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("close body: %v", err)
	}
}

func (s *integrationSuite) closeBodyNoTest(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
