package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/Flarenzy/simple-auth-api/internal/auth"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"4040"`
	DSN             string        `env:"DB_CONN,required,notEmpty"`
	Migrate         bool          `env:"DB_MIGRATE" envDefault:"true"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	JWTSecret string `env:"JWT_SECRET,unset"`
	Issuer    string `env:"JWT_ISSUER"`
	Audience  string `env:"JWT_AUDIENCE"`
	JWKSURL   string `env:"JWKS_URL"`

	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("either JWT_SECRET or JWKS_URL must be set")
	}
	if c.JWTSecret != "" && c.JWKSURL != "" {
		return errors.New("JWT_SECRET and JWKS_URL are mutually exclusive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) authConfig() auth.Config {
	return auth.Config{
		Secret:   c.JWTSecret,
		Issuer:   c.Issuer,
		Audience: c.Audience,
		JWKSURL:  c.JWKSURL,
	}
}
