package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":4000"`
	DataDir  string     `env:"DATA_DIR" envDefault:"data"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`
	BackendOrigin  string `env:"BACKEND_ORIGIN"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`
	GitHubRepo         string `env:"GITHUB_REPO" envDefault:"ARMSX2/ARMSX2"`

	// RedisURL switches the OAuth state store to the Redis backend when set.
	RedisURL string `env:"REDIS_URL"`

	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	SMTPFrom         string `env:"SMTP_FROM"`
	ContactRecipient string `env:"CONTACT_RECIPIENT"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.BackendOrigin == "" {
		addr := cfg.HTTPAddr
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		cfg.BackendOrigin = "http://" + addr
	}
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = cfg.BackendOrigin + "/auth/github/callback"
	}

	return &cfg, nil
}

// AllowedOrigins is the CORS allow-list: the configured frontend origin plus
// the local dev server origins.
func (c *Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:4173",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:4173",
	}
	for _, o := range origins {
		if o == c.FrontendOrigin {
			return origins
		}
	}
	return append([]string{c.FrontendOrigin}, origins...)
}
