package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, read from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string
	// "json" or "console"
	LogFormat string

	Redis      RedisConfig
	Session    SessionConfig
	SMTP       SMTPConfig
	Cloudinary CloudinaryConfig
	Password   PasswordConfig
	RateLimit  RateLimitConfig

	AdminPassword string
	CORSOrigins   []string
	// TrustedProxies may set X-Forwarded-For; empty trusts no proxy and
	// the client address is the TCP peer.
	TrustedProxies []string
	UploadDir      string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// Enabled reports whether enough settings are present to talk to a relay.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type PasswordConfig struct {
	// "bcrypt" or "legacy-md5"
	Scheme     string
	BcryptCost int
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       envOrDefault("APP_ENV", "development"),
		Port:      envOrDefault("PORT", "8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
		Redis: RedisConfig{
			Addr:     envOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Session: SessionConfig{
			Secret:     os.Getenv("SESSION_SECRET"),
			CookieName: envOrDefault("SESSION_COOKIE", "hotel_session"),
		},
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     strings.TrimSpace(os.Getenv("SMTP_PORT")),
			Username: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password: os.Getenv("SMTP_PASSWORD"),
			FromName: envOrDefault("SMTP_FROM_NAME", "Hotel"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME")),
			APIKey:    strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY")),
			APISecret: strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET")),
			Folder:    envOrDefault("CLOUDINARY_FOLDER", "avatars"),
		},
		Password: PasswordConfig{
			Scheme: envOrDefault("PASSWORD_HASH_SCHEME", "bcrypt"),
		},
		AdminPassword:  envOrDefault("ADMIN_PASSWORD", "admin123"),
		CORSOrigins:    parseList(os.Getenv("CORS_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		UploadDir:      envOrDefault("UPLOAD_DIR", "uploads"),
	}

	var err error
	if cfg.Redis.DB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Password.BcryptCost, err = envInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimit.PerMinute, err = envInt("AUTH_RATE_PER_MIN", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = envInt("AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}

	ttl := envOrDefault("SESSION_TTL", "24h")
	if cfg.Session.TTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}
	cfg.Session.Secure, _ = strconv.ParseBool(os.Getenv("SESSION_SECURE"))

	switch cfg.Password.Scheme {
	case "bcrypt", "legacy-md5":
	default:
		return nil, fmt.Errorf("unsupported PASSWORD_HASH_SCHEME %q", cfg.Password.Scheme)
	}

	if cfg.Session.Secret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is not set; required for production")
		}
		cfg.Session.Secret = "dev-session-secret-change-me"
	}

	return cfg, nil
}

// String masks secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config{env: %s, port: %s, redis: %s, password scheme: %s, smtp: %t, cloudinary: %t}",
		c.Env, c.Port, c.Redis.Addr, c.Password.Scheme, c.SMTP.Enabled(), c.Cloudinary.Enabled())
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return v, nil
}

func parseList(raw string) []string {
	out := splitList(raw)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// splitList returns the non-empty comma separated items, or nil.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
