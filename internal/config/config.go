package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// PDMP gateway
	PDMPURL    string
	PDMPAPIKey string

	// Worker pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentSubmit int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PHI handling. When false the render endpoints always redact,
	// regardless of what the request asks for.
	AllowUnsafePHIDisplay bool
}

// fileConfig is the YAML schema of an optional config file. Durations are
// strings in time.ParseDuration syntax.
type fileConfig struct {
	Port                  string `yaml:"port"`
	APIKey                string `yaml:"api_key"`
	PDMPURL               string `yaml:"pdmp_url"`
	PDMPAPIKey            string `yaml:"pdmp_api_key"`
	WorkerCount           int    `yaml:"worker_count"`
	MaxQueueSize          int    `yaml:"max_queue_size"`
	MaxConcurrentSubmit   int    `yaml:"max_concurrent_submit"`
	MaxUploadBytes        int64  `yaml:"max_upload_bytes"`
	JobTTL                string `yaml:"job_ttl"`
	AllowUnsafePHIDisplay bool   `yaml:"allow_unsafe_phi_display"`
}

// Load builds the configuration: defaults, then the optional YAML file named
// by CONFIG_FILE, then environment variables. Later layers win.
func Load() Config {
	cfg := Config{
		Port:                "8091",
		PDMPURL:             "http://localhost:8080",
		WorkerCount:         4,
		MaxQueueSize:        100,
		MaxConcurrentSubmit: 10,
		MaxUploadBytes:      10485760, // 10MB; ASAP reports are small
		JobTTL:              1 * time.Hour,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("ASAPGEST_API_KEY", cfg.APIKey)
	cfg.PDMPURL = envOr("PDMP_URL", cfg.PDMPURL)
	cfg.PDMPAPIKey = envOr("PDMP_API_KEY", cfg.PDMPAPIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentSubmit = envInt("MAX_CONCURRENT_SUBMIT", cfg.MaxConcurrentSubmit)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.AllowUnsafePHIDisplay = envBool("ALLOW_UNSAFE_PHI_DISPLAY", cfg.AllowUnsafePHIDisplay)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentSubmit <= 0 {
		cfg.MaxConcurrentSubmit = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.PDMPURL != "" {
		c.PDMPURL = fc.PDMPURL
	}
	if fc.PDMPAPIKey != "" {
		c.PDMPAPIKey = fc.PDMPAPIKey
	}
	if fc.WorkerCount > 0 {
		c.WorkerCount = fc.WorkerCount
	}
	if fc.MaxQueueSize > 0 {
		c.MaxQueueSize = fc.MaxQueueSize
	}
	if fc.MaxConcurrentSubmit > 0 {
		c.MaxConcurrentSubmit = fc.MaxConcurrentSubmit
	}
	if fc.MaxUploadBytes > 0 {
		c.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.JobTTL != "" {
		d, err := time.ParseDuration(fc.JobTTL)
		if err != nil {
			return fmt.Errorf("parse %s: job_ttl: %w", path, err)
		}
		c.JobTTL = d
	}
	if fc.AllowUnsafePHIDisplay {
		c.AllowUnsafePHIDisplay = true
	}
	return nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("ASAPGEST_API_KEY is required")
	}
	if c.PDMPAPIKey == "" {
		return fmt.Errorf("PDMP_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
