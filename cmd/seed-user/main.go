// Command seed-user inserts a user row for local testing and prints its id.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/Flarenzy/simple-auth-api/internal/app"
	appdb "github.com/Flarenzy/simple-auth-api/internal/db"
	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

type config struct {
	DSN       string `env:"DB_CONN,required,notEmpty"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func main() {
	var input domain.CreateUserInput
	flag.StringVar(&input.Email, "email", "", "email address (required)")
	flag.StringVar(&input.FirstName, "first-name", "", "first name")
	flag.StringVar(&input.LastName, "last-name", "", "last name")
	flag.StringVar(&input.Role, "role", domain.DefaultRole, "role")
	flag.StringVar(&input.Password, "password", "", "password, required for the local provider")
	flag.StringVar(&input.AuthProvider, "provider", domain.ProviderLocal, "authentication provider")
	flag.BoolVar(&input.Inactive, "inactive", false, "create the user disabled")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, input); err != nil {
		log.Fatalf("seed user: %v", err)
	}
}

func run(ctx context.Context, cfg config, input domain.CreateUserInput) error {
	logger := app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	pool, err := appdb.NewPool(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := appdb.Migrate(ctx, pool); err != nil {
		return err
	}

	users := domain.NewLoggingUserService(logger, domain.NewUserService(appdb.NewUserRepository(pool)))
	user, err := users.CreateUser(ctx, input)
	if err != nil {
		return err
	}

	fmt.Println(user.ID)
	return nil
}
