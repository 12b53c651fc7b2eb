package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Storage   StorageConfig
	Blob      BlobConfig
	Upload    UploadConfig
	Analysis  AnalysisConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// SessionIdleTimeout unmounts wizard sessions nobody touched for this long.
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"2h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Relay limits are shared by all clients of the upload and analysis relays.
	RelayRequestsPerSecond int `envconfig:"RELAY_RATE_LIMIT_RPS" default:"10"`
	RelayBurst             int `envconfig:"RELAY_RATE_LIMIT_BURST" default:"20"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// StorageConfig selects the selection snapshot backend.
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"badger"`
	Path   string `envconfig:"STORAGE_PATH" default:"/tmp/dwpnxt/state"`
}

// BlobConfig selects the object store for uploads.
type BlobConfig struct {
	Driver    string `envconfig:"BLOB_DRIVER" default:"local"`
	Token     string `envconfig:"BLOB_READ_WRITE_TOKEN"`
	Dir       string `envconfig:"BLOB_DIR" default:"/tmp/dwpnxt/blobs"`
	PublicURL string `envconfig:"BLOB_PUBLIC_URL" default:"http://localhost:3000/blobs"`
	APIURL    string `envconfig:"BLOB_API_URL" default:"https://blob.vercel-storage.com"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
}

// AnalysisConfig holds analysis backend settings.
type AnalysisConfig struct {
	BackendURL string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	Timeout    time.Duration `envconfig:"ANALYZE_TIMEOUT" default:"2m"`
	// AllowedSources are URL prefixes reference analysis may fetch from.
	// Empty means the blob public URL.
	AllowedSources []string `envconfig:"ANALYZE_ALLOWED_SOURCES"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "3000",
			Host:               "0.0.0.0",
			SessionIdleTimeout: 2 * time.Hour,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:      100,
			Burst:                  200,
			Enabled:                true,
			RelayRequestsPerSecond: 10,
			RelayBurst:             20,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver: "badger",
			Path:   "/tmp/dwpnxt/state",
		},
		Blob: BlobConfig{
			Driver:    "local",
			Dir:       "/tmp/dwpnxt/blobs",
			PublicURL: "http://localhost:3000/blobs",
			APIURL:    "https://blob.vercel-storage.com",
		},
		Upload: UploadConfig{
			MaxBytes: 10 * 1024 * 1024,
		},
		Analysis: AnalysisConfig{
			BackendURL: "http://localhost:8000",
			Timeout:    2 * time.Minute,
		},
	}
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "badger":
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want memory or badger", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "local", "remote":
	default:
		return fmt.Errorf("invalid BLOB_DRIVER %q: want local or remote", c.Blob.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("ANALYZE_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.Analysis.BackendURL, "http://") && !strings.HasPrefix(c.Analysis.BackendURL, "https://") {
		return fmt.Errorf("invalid BACKEND_URL %q", c.Analysis.BackendURL)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
