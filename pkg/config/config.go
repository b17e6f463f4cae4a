package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Signaling struct {
		SessionTTL      time.Duration `yaml:"session_ttl"`
		PeerIdleTTL     time.Duration `yaml:"peer_idle_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"signaling"`

	ScreenShare struct {
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ViewerTimeout   time.Duration `yaml:"viewer_timeout"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"screen_share"`

	Polling struct {
		ResultsCacheTTL time.Duration `yaml:"results_cache_ttl"`
	} `yaml:"polling"`

	Recording struct {
		RetentionDays   int           `yaml:"retention_days"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"recording"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled        bool    `yaml:"enabled"`
		JaegerEndpoint string  `yaml:"jaeger_endpoint"`
		ServiceName    string  `yaml:"service_name"`
		SampleRate     float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Events struct {
		RedisEnabled bool   `yaml:"redis_enabled"`
		RedisAddress string `yaml:"redis_address"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB      int    `yaml:"redis_db"`
		Channel      string `yaml:"channel"`
	} `yaml:"events"`

	Auth struct {
		Enabled   bool   `yaml:"enabled"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Signaling TTLs
	if c.Signaling.SessionTTL <= 0 {
		return fmt.Errorf("signaling.session_ttl must be > 0")
	}
	if c.Signaling.PeerIdleTTL <= 0 {
		return fmt.Errorf("signaling.peer_idle_ttl must be > 0")
	}
	if c.Signaling.PeerIdleTTL > c.Signaling.SessionTTL {
		return fmt.Errorf("signaling.peer_idle_ttl must not exceed signaling.session_ttl")
	}
	if c.Signaling.CleanupInterval <= 0 {
		return fmt.Errorf("signaling.cleanup_interval must be > 0")
	}

	// Screen share
	if c.ScreenShare.IdleTimeout <= 0 {
		return fmt.Errorf("screen_share.idle_timeout must be > 0")
	}
	if c.ScreenShare.ViewerTimeout <= 0 {
		return fmt.Errorf("screen_share.viewer_timeout must be > 0")
	}
	if c.ScreenShare.CleanupInterval <= 0 {
		return fmt.Errorf("screen_share.cleanup_interval must be > 0")
	}

	// Polling
	if c.Polling.ResultsCacheTTL < 0 {
		return fmt.Errorf("polling.results_cache_ttl must be >= 0")
	}

	// Recording
	if c.Recording.RetentionDays <= 0 {
		return fmt.Errorf("recording.retention_days must be > 0")
	}
	if c.Recording.CleanupInterval <= 0 {
		return fmt.Errorf("recording.cleanup_interval must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerEndpoint == "" {
			return fmt.Errorf("tracing.jaeger_endpoint must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Events
	if c.Events.RedisEnabled {
		if c.Events.RedisAddress == "" {
			return fmt.Errorf("events.redis_address must not be empty when events.redis_enabled=true")
		}
		if c.Events.Channel == "" {
			return fmt.Errorf("events.channel must not be empty when events.redis_enabled=true")
		}
	}

	// Auth
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty when auth.enabled=true")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Signaling.SessionTTL = 30 * time.Minute
	cfg.Signaling.PeerIdleTTL = 5 * time.Minute
	cfg.Signaling.CleanupInterval = time.Minute

	cfg.ScreenShare.IdleTimeout = 5 * time.Minute
	cfg.ScreenShare.ViewerTimeout = 5 * time.Minute
	cfg.ScreenShare.CleanupInterval = time.Minute

	cfg.Polling.ResultsCacheTTL = 2 * time.Second

	cfg.Recording.RetentionDays = 30
	cfg.Recording.CleanupInterval = time.Hour

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	cfg.Tracing.ServiceName = "collabcore"
	cfg.Tracing.SampleRate = 0.1

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Events.RedisEnabled = false
	cfg.Events.RedisAddress = "localhost:6379"
	cfg.Events.RedisDB = 0
	cfg.Events.Channel = "collabcore:events"

	cfg.Auth.Enabled = false
	cfg.Auth.JWTSecret = ""

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if addr := os.Getenv("COLLABCORE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("COLLABCORE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("COLLABCORE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if addr := os.Getenv("COLLABCORE_REDIS_ADDRESS"); addr != "" {
		c.Events.RedisAddress = addr
	}
}
