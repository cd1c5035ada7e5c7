package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. Values come from the environment with
// the HOTEL_ prefix (HOTEL_PORT, HOTEL_DB_HOST, ...), falling back to
// defaults suitable for local development.
type Config struct {
	AppEnv string `mapstructure:"app_env"`
	Port   string `mapstructure:"port"`

	DB         DatabaseConfig   `mapstructure:"db"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Enabled bool     `mapstructure:"enabled"`
}

type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type HTTPConfig struct {
	RateLimitPerSecond float64       `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HOTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "hotel")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 24*time.Hour)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "hotel-backend")
	v.SetDefault("kafka.enabled", true)

	v.SetDefault("reconciler.interval", 5*time.Minute)

	v.SetDefault("http.rate_limit_per_second", 20.0)
	v.SetDefault("http.rate_limit_burst", 40)
	v.SetDefault("http.cache_ttl", 30*time.Second)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("HOTEL_JWT_SECRET is required")
	}
	return &cfg, nil
}

// DSN returns the database connection string for the GORM driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the database connection URL for the migration tool.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
