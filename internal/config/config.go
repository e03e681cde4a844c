package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port        int    `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"` // development | production
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// Database. DATABASE_URL wins over the DB_* parts when set.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	// Redis; empty disables the statistics cache
	RedisURL      string        `mapstructure:"REDIS_URL"`
	StatsCacheTTL time.Duration `mapstructure:"STATS_CACHE_TTL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Seed
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

var keys = []string{
	"PORT", "APP_ENV", "CORS_ORIGINS",
	"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_URL", "STATS_CACHE_TTL",
	"JWT_SECRET", "JWT_EXPIRATION_HOURS",
	"ADMIN_EMAIL", "ADMIN_PASSWORD",
}

// Load reads configs/.env (if present) into the process environment, then
// resolves every setting through viper with development defaults.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for _, k := range keys {
		// AutomaticEnv alone does not make Unmarshal see unset keys
		_ = v.BindEnv(k)
	}

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sushishop")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("STATS_CACHE_TTL", "1m")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("ADMIN_EMAIL", "admin@sushi.local")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWTExpirationHours)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// DSN returns DATABASE_URL or assembles a postgres URL from the DB_* parts
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Secret returns the JWT signing key; development falls back to a fixed key
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("dev-only-secret")
	}
	return []byte(c.JWTSecret)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
