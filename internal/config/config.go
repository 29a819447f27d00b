package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Auth        AuthConfig        `mapstructure:"auth"`
	DeliveryLog DeliveryLogConfig `mapstructure:"delivery_log"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WebhookConfig holds the settings shared by the inquiry and recruit webhooks.
type WebhookConfig struct {
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins string        `mapstructure:"allowed_origins"` // comma separated
	Timezone       string        `mapstructure:"timezone"`
	DedupeWindow   time.Duration `mapstructure:"dedupe_window"`
}

type RateLimitConfig struct {
	Backend       string        `mapstructure:"backend"` // "memory" or "redis"
	Limit         int           `mapstructure:"limit"`
	Window        time.Duration `mapstructure:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	JWTExpiryHours    int    `mapstructure:"jwt_expiry_hours"`
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

type DeliveryLogConfig struct {
	BufferSize    int `mapstructure:"buffer_size"`
	RetentionDays int `mapstructure:"retention_days"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads .env (if present), the optional config file at path and the
// environment. WEBHOOK_SECRET maps to webhook.secret, DATABASE_DSN to
// database.dsn and so on.
func Load(path string) (*Config, error) {
	// Load env if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.dsn", "postgres://localhost:5432/crm?sslmode=disable")
	v.SetDefault("database.schema", "webhook")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.allowed_origins", "")
	v.SetDefault("webhook.timezone", "Asia/Seoul")
	v.SetDefault("webhook.dedupe_window", 10*time.Minute)
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("ratelimit.sweep_interval", 5*time.Minute)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry_hours", 12)
	v.SetDefault("auth.bootstrap_email", "")
	v.SetDefault("auth.bootstrap_password", "")
	v.SetDefault("delivery_log.buffer_size", 1000)
	v.SetDefault("delivery_log.retention_days", 90)
	v.SetDefault("logging.development", true)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.Schema == "" {
		return errors.New("database.schema is required")
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when ratelimit.backend is redis")
		}
	default:
		return fmt.Errorf("unknown ratelimit.backend %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Limit <= 0 {
		return errors.New("ratelimit.limit must be > 0")
	}
	if c.RateLimit.Window < time.Second {
		return errors.New("ratelimit.window must be at least 1s")
	}
	if c.RateLimit.SweepInterval <= 0 {
		return errors.New("ratelimit.sweep_interval must be > 0")
	}
	if c.Webhook.DedupeWindow <= 0 {
		return errors.New("webhook.dedupe_window must be > 0")
	}
	if _, err := time.LoadLocation(c.Webhook.Timezone); err != nil {
		return fmt.Errorf("webhook.timezone: %w", err)
	}
	if c.DeliveryLog.BufferSize <= 0 {
		return errors.New("delivery_log.buffer_size must be > 0")
	}
	if c.Auth.BootstrapEmail != "" && c.Auth.BootstrapPassword == "" {
		return errors.New("auth.bootstrap_password must be set with auth.bootstrap_email")
	}
	return nil
}

// AllowedOrigins splits the comma-separated origin list, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Webhook.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Location returns the ingestion time zone used for the default inquiry date.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Webhook.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) AdminEnabled() bool {
	return c.Auth.JWTSecret != ""
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
