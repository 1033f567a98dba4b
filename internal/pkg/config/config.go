package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// defaultCORSOrigins is applied when CORS_ALLOWED_ORIGINS is unset.
var defaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// CORSAllowedOrigins is a comma separated list of origins.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	JWTTTL        time.Duration `env:"JWT_TTL,             default=24h"`
	SubjectLookup string        `env:"AUTH_SUBJECT_LOOKUP, default=user_id"`

	BootstrapEnabled  bool   `env:"BOOTSTRAP_ADMIN_ENABLED,  default=true"`
	BootstrapEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL,    default=admin@hospital.com"`
	BootstrapPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD, default=admin123"`

	AppBaseURL    string        `env:"APP_BASE_URL,    default=http://localhost:3000"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=1h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hospital_pharmacy"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host    string `env:"SMTP_HOST"`
	Port    int    `env:"SMTP_PORT,    default=587"`
	User    string `env:"SMTP_USER"`
	Pass    string `env:"SMTP_PASS"`
	Sender  string `env:"SMTP_SENDER,  default=no-reply@hospital.com"`
	Workers int    `env:"MAIL_WORKERS, default=4"`
}

// AllowedOrigins splits CORSAllowedOrigins, falling back to the local
// frontend origins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return defaultCORSOrigins
	}
	return out
}

// ResetURL is the frontend page that receives password reset tokens.
func (c *Config) ResetURL() string {
	return strings.TrimRight(c.Auth.AppBaseURL, "/") + "/login/resetPassword"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Auth.SubjectLookup {
	case "user_id", "email":
	default:
		return nil, fmt.Errorf("config: AUTH_SUBJECT_LOOKUP must be user_id or email, got %q", cfg.Auth.SubjectLookup)
	}
	return &cfg, nil
}

// MustLoad is Load for main: it panics when the environment is invalid.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
