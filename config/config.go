package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// HTTPConfig configures the REST API listener
type HTTPConfig struct {
	Port      string `toml:"port"`
	LogHTTP   bool   `toml:"log_http"`
	Release   bool   `toml:"release"`
	MaxUpload int64  `toml:"max_upload_bytes"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AuthConfig configures operator tokens and device check-in tokens
type AuthConfig struct {
	TokenTTL        Duration `toml:"token_ttl"`
	DeviceJWTSecret string   `toml:"device_jwt_secret"`
	DeviceJWTTTL    Duration `toml:"device_jwt_ttl"`
}

// AssetConfig selects the asset store backend
type AssetConfig struct {
	Backend     string `toml:"backend"` // local | remote
	Dir         string `toml:"dir"`
	BaseURL     string `toml:"base_url"`
	RemoteURL   string `toml:"remote_url"`
	RemoteToken string `toml:"remote_token"`
}

// RedisConfig configures the optional check-in event stream
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Stream   string `toml:"stream"`
	MaxLen   int    `toml:"max_len"`
}

// Enabled reports whether check-in events are streamed to Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Config is the complete server configuration
type Config struct {
	Timezone string         `toml:"timezone"`
	HTTP     HTTPConfig     `toml:"http"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
	Assets   AssetConfig    `toml:"assets"`
	Redis    RedisConfig    `toml:"redis"`
	Firebase FirebaseConfig `toml:"firebase"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Timezone: "UTC",
		HTTP: HTTPConfig{
			Port:      "8080",
			MaxUpload: 200 << 20,
		},
		Database: defaultDatabaseConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			TokenTTL:     Duration(24 * time.Hour),
			DeviceJWTTTL: Duration(365 * 24 * time.Hour),
		},
		Assets: AssetConfig{
			Backend: "local",
			Dir:     "uploads",
			BaseURL: "/api/v1/files",
		},
		Redis: RedisConfig{
			Stream: "signage:checkins",
			MaxLen: 100000,
		},
	}
}

// Load builds the configuration: defaults, then the TOML file named by SIGNAGE_CONFIG
// (or path when non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SIGNAGE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadEnv() {
	setString(&c.Timezone, "APP_TIMEZONE")

	setString(&c.HTTP.Port, "HTTP_PORT")
	setBool(&c.HTTP.LogHTTP, "LOG_HTTP")
	setBool(&c.HTTP.Release, "GIN_RELEASE")

	c.Database.loadEnv()

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setDuration(&c.Auth.TokenTTL, "TOKEN_TTL")
	setString(&c.Auth.DeviceJWTSecret, "DEVICE_JWT_SECRET")
	setDuration(&c.Auth.DeviceJWTTTL, "DEVICE_JWT_TTL")

	setString(&c.Assets.Backend, "ASSET_BACKEND")
	setString(&c.Assets.Dir, "ASSET_DIR")
	setString(&c.Assets.BaseURL, "ASSET_BASE_URL")
	setString(&c.Assets.RemoteURL, "ASSET_REMOTE_URL")
	setString(&c.Assets.RemoteToken, "ASSET_REMOTE_TOKEN")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Redis.Stream, "REDIS_STREAM")

	c.Firebase.loadEnv()
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http port is required"))
	}
	if c.HTTP.Release && c.Auth.DeviceJWTSecret == "" {
		errs = append(errs, errors.New("DEVICE_JWT_SECRET is required in release mode"))
	}
	switch c.Assets.Backend {
	case "local":
		if c.Assets.Dir == "" {
			errs = append(errs, errors.New("asset dir is required for the local backend"))
		}
	case "remote":
		if c.Assets.RemoteURL == "" {
			errs = append(errs, errors.New("ASSET_REMOTE_URL is required for the remote backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown asset backend %q", c.Assets.Backend))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	return errors.Join(errs...)
}
