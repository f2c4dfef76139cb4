package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"censusdesk/internal/platform/database"
	"censusdesk/internal/platform/kafka/producer"
	"censusdesk/internal/platform/redis"
	"censusdesk/internal/platform/tracer"
)

const (
	EnvProduction  = "production"
	devSigningKey  = "dev-secret-key-change-in-production"
	minProdKeySize = 32
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
// Variables already set in the process environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"CENSUS_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"CENSUS_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"CENSUS_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"CENSUS_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"CENSUS_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"CENSUS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"CENSUS_MAX_BODY_BYTES" envDefault:"65536"`
}

// Auth configures session token validation.
type Auth struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"censusdesk"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"censusdesk-api"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

// Bootstrap seeds the first admin, and optionally demo data, at startup.
type Bootstrap struct {
	AdminID    string `env:"BOOTSTRAP_ADMIN_ID"`
	AdminEmail string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	SeedDemo   bool   `env:"SEED_DEMO" envDefault:"false"`
}

// Config is the full process configuration.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
	AuditBuffer     int           `env:"AUDIT_BUFFER" envDefault:"256"`
	AuditRetention  int           `env:"AUDIT_RETENTION" envDefault:"10000"`

	Server    Server
	Auth      Auth
	Bootstrap Bootstrap
	Database  database.Config
	Redis     redis.Config
	Kafka     producer.Config
	Tracing   tracer.Config
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.Auth.JWTSigningKey == devSigningKey || len(c.Auth.JWTSigningKey) < minProdKeySize {
			return fmt.Errorf("JWT_SIGNING_KEY must be set to at least %d characters in production", minProdKeySize)
		}
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required in production")
		}
	}
	if c.Bootstrap.SeedDemo && c.Bootstrap.AdminEmail == "" {
		return errors.New("SEED_DEMO requires BOOTSTRAP_ADMIN_EMAIL")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("CENSUS_MAX_BODY_BYTES must be positive")
	}
	if r := c.Tracing.SampleRatio; r < 0 || r > 1 {
		return errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	return nil
}

// LoadEnv loads the env files that exist and returns how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads DefaultEnvFiles, then parses and validates the environment.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFiles)
}

func LoadFrom(envFiles []string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
