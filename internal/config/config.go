package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPredictURL is the prediction endpoint the widget posts images to.
	DefaultPredictURL = "http://127.0.0.1:8000/predict"
	// DefaultTimeFormat renders result timestamps for display.
	DefaultTimeFormat = "02/01/2006, 15:04:05"
)

type Config struct {
	Port           int      `yaml:"port"`
	PredictURL     string   `yaml:"predict_url"`
	PredictTimeout int      `yaml:"predict_timeout"` // Seconds, 0 waits until the transport gives up
	DatabasePath   string   `yaml:"db_path"`
	LogDirectory   string   `yaml:"log_dir"`
	SessionTTL     int      `yaml:"session_ttl"` // Minutes of inactivity before a session slot is dropped
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	TimeZone       string   `yaml:"time_zone"`
	TimeFormat     string   `yaml:"time_format"`
	CORSOrigins    []string `yaml:"cors_origins"`
	LogsToken      string   `yaml:"logs_token"` // Bearer token for /logs; empty disables the endpoints
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and environment variables (a local .env file is read first).
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:         8080,
		PredictURL:   DefaultPredictURL,
		DatabasePath: filepath.Join(".", "data", "widget.db"),
		LogDirectory: filepath.Join(".", "logs"),
		SessionTTL:   30,
		MaxUploadMB:  20,
		TimeZone:     "Local",
		TimeFormat:   DefaultTimeFormat,
		CORSOrigins:  []string{"*"},
	}
}

// loadFile overlays values present in a YAML config file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvAsInt("PORT", c.Port)
	c.PredictURL = getEnv("PREDICT_URL", c.PredictURL)
	c.PredictTimeout = getEnvAsInt("PREDICT_TIMEOUT", c.PredictTimeout)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.LogDirectory = getEnv("LOG_DIR", c.LogDirectory)
	c.SessionTTL = getEnvAsInt("SESSION_TTL", c.SessionTTL)
	c.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)
	c.TimeFormat = getEnv("TIME_FORMAT", c.TimeFormat)
	c.LogsToken = getEnv("LOGS_TOKEN", c.LogsToken)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// Location resolves TimeZone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PredictTimeoutDuration returns the client timeout; zero means none.
func (c *Config) PredictTimeoutDuration() time.Duration {
	return time.Duration(c.PredictTimeout) * time.Second
}

// MaxUploadBytes is the multipart parse limit for incoming uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SessionTTLDuration is the idle lifetime of a session slot.
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
