package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Soundtrack SoundtrackConfig
	Worker     WorkerConfig
	Cache      CacheConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
}

type ServerConfig struct {
	Host         string
	Port         int
	FrontendURL  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SoundtrackConfig configures access to the Soundtrack API. Exactly one of
// APIToken ("token" mode, Basic auth) or user-mode login through the token
// manager is used per deployment.
type SoundtrackConfig struct {
	URL         string
	APIToken    string
	Mode        string // "token" or "user"
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
}

type WorkerConfig struct {
	// Interval between poll ticks, in whole seconds. Must be > 0.
	IntervalSeconds int
	MetricsPort     int
}

func (c *WorkerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type CacheConfig struct {
	// Backend is "memory", "redis" or "database".
	Backend string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config

	// App
	cfg.App.Name = viper.GetString("app.name")
	cfg.App.Environment = viper.GetString("app.environment")
	cfg.App.Debug = viper.GetBool("app.debug")

	// Server
	cfg.Server.Host = viper.GetString("server.host")
	cfg.Server.Port = viper.GetInt("server.port")
	cfg.Server.FrontendURL = viper.GetString("server.frontend_url")
	cfg.Server.ReadTimeout = viper.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server.write_timeout")
	cfg.Server.IdleTimeout = viper.GetDuration("server.idle_timeout")

	// Database
	cfg.Database.Host = viper.GetString("database.host")
	cfg.Database.Port = viper.GetInt("database.port")
	cfg.Database.User = viper.GetString("database.user")
	cfg.Database.Password = viper.GetString("database.password")
	cfg.Database.Name = viper.GetString("database.name")
	cfg.Database.SSLMode = viper.GetString("database.sslmode")
	cfg.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = viper.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = viper.GetDuration("database.conn_max_lifetime")

	// Redis
	cfg.Redis.Host = viper.GetString("redis.host")
	cfg.Redis.Port = viper.GetInt("redis.port")
	cfg.Redis.Password = viper.GetString("redis.password")
	cfg.Redis.DB = viper.GetInt("redis.db")

	// Soundtrack API
	cfg.Soundtrack.URL = viper.GetString("soundtrack.url")
	cfg.Soundtrack.APIToken = viper.GetString("soundtrack.api_token")
	cfg.Soundtrack.Mode = viper.GetString("soundtrack.mode")
	cfg.Soundtrack.Concurrency = viper.GetInt("soundtrack.concurrency")
	cfg.Soundtrack.MaxAttempts = viper.GetInt("soundtrack.max_attempts")
	cfg.Soundtrack.RetryDelay = viper.GetDuration("soundtrack.retry_delay")

	// Worker
	cfg.Worker.IntervalSeconds = viper.GetInt("worker.interval_seconds")
	cfg.Worker.MetricsPort = viper.GetInt("worker.metrics_port")

	// Cache
	cfg.Cache.Backend = viper.GetString("cache.backend")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configuration that is unsafe to start with. Invalid
// worker settings are fatal at startup rather than detected mid-tick.
func (c *Config) Validate() error {
	if c.Worker.IntervalSeconds <= 0 {
		return fmt.Errorf("invalid worker interval: %d, must be a positive number of seconds", c.Worker.IntervalSeconds)
	}
	if c.Soundtrack.Concurrency <= 0 {
		return fmt.Errorf("invalid soundtrack concurrency: %d, must be > 0", c.Soundtrack.Concurrency)
	}
	if c.Soundtrack.MaxAttempts <= 0 {
		return fmt.Errorf("invalid soundtrack max attempts: %d, must be > 0", c.Soundtrack.MaxAttempts)
	}
	if c.Soundtrack.Mode != "token" && c.Soundtrack.Mode != "user" {
		return fmt.Errorf("invalid soundtrack mode: %q, must be \"token\" or \"user\"", c.Soundtrack.Mode)
	}
	if c.Soundtrack.Mode == "token" && c.Soundtrack.APIToken == "" {
		return fmt.Errorf("soundtrack.api_token is required in token mode")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "database":
	default:
		return fmt.Errorf("invalid cache backend: %q", c.Cache.Backend)
	}
	return nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "zonetune")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", true)

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.frontend_url", "http://localhost:3000")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "zonetune")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Soundtrack API defaults
	viper.SetDefault("soundtrack.url", "https://api.soundtrackyourbrand.com/v2")
	viper.SetDefault("soundtrack.mode", "token")
	viper.SetDefault("soundtrack.concurrency", 3)
	viper.SetDefault("soundtrack.max_attempts", 3)
	viper.SetDefault("soundtrack.retry_delay", "10s")

	// Worker defaults
	viper.SetDefault("worker.interval_seconds", 60)
	viper.SetDefault("worker.metrics_port", 9090)

	// Cache defaults
	viper.SetDefault("cache.backend", "memory")
}
