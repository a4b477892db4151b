package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string

	// Image URL allowlists; empty means unrestricted
	AllowedURLSchemes []string
	AllowedImageHosts []string

	Vision  VisionConfig
	Storage StorageConfig
}

// VisionConfig holds the provider connection settings
type VisionConfig struct {
	Endpoint      string
	Key           string
	Language      string
	MaxCandidates int
}

// StorageConfig holds the Azure Storage account used to sign private blob URLs
type StorageConfig struct {
	AccountName string
	AccountKey  string
	Containers  []string
	SASExpiry   time.Duration
}

// Enabled reports whether blob URL signing is configured
func (s StorageConfig) Enabled() bool {
	return s.AccountName != "" && s.AccountKey != ""
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv builds the configuration from the environment. When CONFIG_FILE
// points at a YAML file its keys (lower-case variable names) act as defaults
// that the environment overrides.
func LoadFromEnv() (*Config, error) {
	src := source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}

	// Set defaults
	cfg := &Config{
		Host:               src.getOrDefault("HOST", "0.0.0.0"),
		Port:               src.getOrDefault("PORT", "3000"),
		RequestTimeout:     src.durationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: src.intOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024), // 1MB
		LogLevel:           src.getOrDefault("LOG_LEVEL", "info"),
		LogFormat:          strings.ToLower(src.getOrDefault("LOG_FORMAT", "json")),
		CORSAllowedOrigins: src.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedURLSchemes:  src.list("ALLOWED_URL_SCHEMES", nil),
		AllowedImageHosts:  src.list("ALLOWED_IMAGE_HOSTS", nil),
		Vision: VisionConfig{
			Endpoint:      strings.TrimSpace(src.get("VISION_ENDPOINT")),
			Key:           strings.TrimSpace(src.get("VISION_KEY")),
			Language:      src.getOrDefault("VISION_LANGUAGE", "en"),
			MaxCandidates: int(src.intOrDefault("VISION_MAX_CANDIDATES", 1)),
		},
		Storage: StorageConfig{
			AccountName: strings.TrimSpace(src.get("STORAGE_ACCOUNT_NAME")),
			AccountKey:  strings.TrimSpace(src.get("STORAGE_ACCOUNT_KEY")),
			Containers:  src.list("STORAGE_CONTAINERS", nil),
			SASExpiry:   src.durationOrDefault("STORAGE_SAS_EXPIRY", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text (got %q)", c.LogFormat)
	}
	if c.Vision.Endpoint == "" {
		return fmt.Errorf("VISION_ENDPOINT is required")
	}
	u, err := url.Parse(c.Vision.Endpoint)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("invalid VISION_ENDPOINT: %q", c.Vision.Endpoint)
	}
	if c.Vision.Key == "" {
		return fmt.Errorf("VISION_KEY is required")
	}
	if c.Vision.MaxCandidates < 1 {
		return fmt.Errorf("VISION_MAX_CANDIDATES must be >= 1 (got %d)", c.Vision.MaxCandidates)
	}
	if (c.Storage.AccountName == "") != (c.Storage.AccountKey == "") {
		return fmt.Errorf("STORAGE_ACCOUNT_NAME and STORAGE_ACCOUNT_KEY must be set together")
	}
	if c.Storage.SASExpiry <= 0 {
		return fmt.Errorf("STORAGE_SAS_EXPIRY must be > 0 (got %s)", c.Storage.SASExpiry)
	}
	return nil
}

func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return values, nil
}

// source resolves a variable from the environment first, then the config file
type source struct {
	file map[string]string
}

func (s source) get(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[strings.ToLower(key)]
}

func (s source) getOrDefault(key, defaultValue string) string {
	if value := s.get(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) durationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := s.get(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func (s source) intOrDefault(key string, defaultValue int64) int64 {
	if value := s.get(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// list splits a comma-separated value, dropping blanks
func (s source) list(key string, defaultValue []string) []string {
	value := s.get(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
