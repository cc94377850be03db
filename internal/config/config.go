package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port int // HTTP server port

	// Page fetch configuration
	RequestTimeout time.Duration // Top-level page fetch timeout (static collection)
	UserAgent      string        // User-Agent sent by both collection strategies

	// Rendered collection configuration
	RendererEnabled   bool          // Use headless Chrome when a binary can be found
	ChromePath        string        // Explicit Chrome binary path; auto-discovered when empty
	NavigationTimeout time.Duration // Page navigation timeout inside the browser
	SettleDelay       time.Duration // Wait after navigation so lazy-loaded images appear
	ViewportWidth     int           // Emulated viewport width
	ViewportHeight    int           // Emulated viewport height

	// Per-image evidence gathering
	ImageFetchTimeout    time.Duration // Direct image fetch timeout; shorter than RequestTimeout
	MaxConcurrentFetches int           // Upper bound on concurrent per-image fetches
	MaxImageBytes        int64         // Cap on bytes read from a single image body
}

// Load reads configuration from an optional YAML file (IMGSCOPE_CONFIG)
// and environment variables, with environment values taking precedence.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("IMGSCOPE_CONFIG"); path != "" {
		cfg.applyFile(path)
	}

	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)
	cfg.RendererEnabled = getEnvAsBool("RENDERER_ENABLED", cfg.RendererEnabled)
	cfg.ChromePath = getEnv("CHROME_PATH", cfg.ChromePath)
	cfg.NavigationTimeout = getEnvAsDuration("NAVIGATION_TIMEOUT", cfg.NavigationTimeout)
	cfg.SettleDelay = getEnvAsDuration("SETTLE_DELAY", cfg.SettleDelay)
	cfg.ViewportWidth = getEnvAsInt("VIEWPORT_WIDTH", cfg.ViewportWidth)
	cfg.ViewportHeight = getEnvAsInt("VIEWPORT_HEIGHT", cfg.ViewportHeight)
	cfg.ImageFetchTimeout = getEnvAsDuration("IMAGE_FETCH_TIMEOUT", cfg.ImageFetchTimeout)
	cfg.MaxConcurrentFetches = getEnvAsInt("MAX_CONCURRENT_FETCHES", cfg.MaxConcurrentFetches)
	cfg.MaxImageBytes = getEnvAsInt64("MAX_IMAGE_BYTES", cfg.MaxImageBytes)

	return cfg
}

func defaults() *Config {
	return &Config{
		Port:                 8080,
		RequestTimeout:       15 * time.Second,
		UserAgent:            "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		RendererEnabled:      true,
		NavigationTimeout:    30 * time.Second,
		SettleDelay:          2 * time.Second,
		ViewportWidth:        1280,
		ViewportHeight:       800,
		ImageFetchTimeout:    10 * time.Second,
		MaxConcurrentFetches: 8,
		MaxImageBytes:        25 << 20,
	}
}

// fileConfig mirrors Config for YAML decoding. Durations are expressed
// in milliseconds; pointer fields distinguish unset from zero.
type fileConfig struct {
	Port                 *int    `yaml:"port"`
	RequestTimeoutMs     *int    `yaml:"request_timeout_ms"`
	UserAgent            *string `yaml:"user_agent"`
	RendererEnabled      *bool   `yaml:"renderer_enabled"`
	ChromePath           *string `yaml:"chrome_path"`
	NavigationTimeoutMs  *int    `yaml:"navigation_timeout_ms"`
	SettleDelayMs        *int    `yaml:"settle_delay_ms"`
	ViewportWidth        *int    `yaml:"viewport_width"`
	ViewportHeight       *int    `yaml:"viewport_height"`
	ImageFetchTimeoutMs  *int    `yaml:"image_fetch_timeout_ms"`
	MaxConcurrentFetches *int    `yaml:"max_concurrent_fetches"`
	MaxImageBytes        *int64  `yaml:"max_image_bytes"`
}

// applyFile overlays values from a YAML config file onto cfg.
// Unreadable or malformed files are ignored so a bad config file
// never prevents startup with defaults.
func (c *Config) applyFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.RequestTimeoutMs != nil {
		c.RequestTimeout = time.Duration(*fc.RequestTimeoutMs) * time.Millisecond
	}
	if fc.UserAgent != nil {
		c.UserAgent = *fc.UserAgent
	}
	if fc.RendererEnabled != nil {
		c.RendererEnabled = *fc.RendererEnabled
	}
	if fc.ChromePath != nil {
		c.ChromePath = *fc.ChromePath
	}
	if fc.NavigationTimeoutMs != nil {
		c.NavigationTimeout = time.Duration(*fc.NavigationTimeoutMs) * time.Millisecond
	}
	if fc.SettleDelayMs != nil {
		c.SettleDelay = time.Duration(*fc.SettleDelayMs) * time.Millisecond
	}
	if fc.ViewportWidth != nil {
		c.ViewportWidth = *fc.ViewportWidth
	}
	if fc.ViewportHeight != nil {
		c.ViewportHeight = *fc.ViewportHeight
	}
	if fc.ImageFetchTimeoutMs != nil {
		c.ImageFetchTimeout = time.Duration(*fc.ImageFetchTimeoutMs) * time.Millisecond
	}
	if fc.MaxConcurrentFetches != nil {
		c.MaxConcurrentFetches = *fc.MaxConcurrentFetches
	}
	if fc.MaxImageBytes != nil {
		c.MaxImageBytes = *fc.MaxImageBytes
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsInt64 reads an environment variable as a 64-bit integer
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as milliseconds and converts to time.Duration
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Parse as milliseconds
	ms, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return time.Duration(ms) * time.Millisecond
}
