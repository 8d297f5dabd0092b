package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration. Values come from an optional
// config file plus APEXQUEST_* environment variables; secrets (JWT key,
// OAuth client secrets, Gemini key) are only ever read server-side.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// AuthConfig covers both human login (OIDC) and our own session tokens.
type AuthConfig struct {
	Issuer         string        `mapstructure:"issuer"`
	ClientID       string        `mapstructure:"client_id"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	AdminEmail     string        `mapstructure:"admin_email"`
	ModeratorEmail string        `mapstructure:"moderator_email"`
}

// AgentsConfig holds the machine-credential settings for the three fixed
// agent identities. Mode selects the authenticator implementation.
type AgentsConfig struct {
	Mode     string           `mapstructure:"mode"` // "oauth" or "fake"
	TokenURL string           `mapstructure:"token_url"`
	Audience string           `mapstructure:"audience"`
	Admin    AgentCredentials `mapstructure:"admin"`
	Mod      AgentCredentials `mapstructure:"mod"`
	User     AgentCredentials `mapstructure:"user"`
}

type AgentCredentials struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type GeminiConfig struct {
	APIKey string  `mapstructure:"api_key"`
	Model  string  `mapstructure:"model"`
	RPS    float64 `mapstructure:"rps"` // outbound request throttle
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads configuration from ./config.yaml (if present) and the
// environment. Missing required settings fail fast here rather than at the
// first request.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("APEXQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_email", "admin@apexquest.com")
	v.SetDefault("auth.moderator_email", "mod@apexquest.com")
	v.SetDefault("agents.mode", "fake")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.rps", 1.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Agents.Mode == "oauth" && cfg.Agents.TokenURL == "" {
		return nil, fmt.Errorf("agents.token_url is required in oauth mode")
	}
	return &cfg, nil
}
