// Package config provides configuration file and environment support for the
// evidence engine.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents the configuration options for the evidence engine.
// Durations are expressed in milliseconds.
type Config struct {
	// Web search providers
	GoogleAPIKey   string `json:"google_api_key,omitempty"`
	GoogleCX       string `json:"google_cx,omitempty"`
	GoogleEndpoint string `json:"google_endpoint,omitempty"`
	JinaAPIKey     string `json:"jina_api_key,omitempty"`
	JinaURL        string `json:"jina_url,omitempty"`

	// Forum search
	ForumURL   string `json:"forum_url,omitempty"`
	ForumLimit int    `json:"forum_limit,omitempty"`

	// Limits and timing
	ResultCount    int `json:"result_count,omitempty"`
	MaxKeywords    int `json:"max_keywords,omitempty"`
	WebTimeoutMS   int `json:"web_timeout_ms,omitempty"`
	ForumTimeoutMS int `json:"forum_timeout_ms,omitempty"`
	QueryDelayMS   int `json:"query_delay_ms,omitempty"`

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"`

	// Server
	Port    int    `json:"port,omitempty"`
	LogFile string `json:"log_file,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Upper bounds accepted by Validate.
const (
	maxForumLimit  = 10
	maxResultCount = 10
	maxKeywords    = 8
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ForumLimit:     10,
		ResultCount:    10,
		MaxKeywords:    8,
		WebTimeoutMS:   6000,
		ForumTimeoutMS: 4000,
		QueryDelayMS:   200,
		Port:           8080,
	}
}

// LoadConfig reads and parses a JSON config file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset or malformed
// numeric variables are left at zero so MergeWithDefaults can fill them.
func FromEnv() Config {
	return Config{
		GoogleAPIKey:   os.Getenv("GOOGLE_SEARCH_API_KEY"),
		GoogleCX:       os.Getenv("GOOGLE_SEARCH_CX"),
		GoogleEndpoint: os.Getenv("GOOGLE_SEARCH_ENDPOINT"),
		JinaAPIKey:     os.Getenv("JINA_API_KEY"),
		JinaURL:        os.Getenv("JINA_SEARCH_URL"),
		ForumURL:       os.Getenv("FORUM_SEARCH_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WebTimeoutMS:   envInt("WEB_SEARCH_TIMEOUT_MS"),
		ForumTimeoutMS: envInt("FORUM_SEARCH_TIMEOUT_MS"),
		QueryDelayMS:   envInt("SEARCH_QUERY_DELAY_MS"),
		Port:           envInt("PORT"),
		LogFile:        os.Getenv("LOG_FILE"),
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks that config values are within acceptable ranges
func (c *Config) Validate() error {
	if c.ForumLimit < 0 || c.ForumLimit > maxForumLimit {
		return fmt.Errorf("config error: forum_limit must be between 0 and %d, got %d", maxForumLimit, c.ForumLimit)
	}
	if c.ResultCount < 0 || c.ResultCount > maxResultCount {
		return fmt.Errorf("config error: result_count must be between 0 and %d, got %d", maxResultCount, c.ResultCount)
	}
	if c.MaxKeywords < 0 || c.MaxKeywords > maxKeywords {
		return fmt.Errorf("config error: max_keywords must be between 0 and %d, got %d", maxKeywords, c.MaxKeywords)
	}
	if c.WebTimeoutMS < 0 {
		return fmt.Errorf("config error: web_timeout_ms must be non-negative, got %d", c.WebTimeoutMS)
	}
	if c.ForumTimeoutMS < 0 {
		return fmt.Errorf("config error: forum_timeout_ms must be non-negative, got %d", c.ForumTimeoutMS)
	}
	if c.QueryDelayMS < 0 {
		return fmt.Errorf("config error: query_delay_ms must be non-negative, got %d", c.QueryDelayMS)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 0 and 65535, got %d", c.Port)
	}
	if c.GoogleCX != "" && c.GoogleAPIKey == "" {
		return fmt.Errorf("config error: google_cx is set but google_api_key is empty")
	}
	for name, raw := range map[string]string{
		"google_endpoint": c.GoogleEndpoint,
		"jina_url":        c.JinaURL,
		"forum_url":       c.ForumURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("config error: %s is not an absolute URL: %q", name, raw)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with values from c, falling back to defaults for empty fields
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := defaults

	if c.GoogleAPIKey != "" {
		result.GoogleAPIKey = c.GoogleAPIKey
	}
	if c.GoogleCX != "" {
		result.GoogleCX = c.GoogleCX
	}
	if c.GoogleEndpoint != "" {
		result.GoogleEndpoint = c.GoogleEndpoint
	}
	if c.JinaAPIKey != "" {
		result.JinaAPIKey = c.JinaAPIKey
	}
	if c.JinaURL != "" {
		result.JinaURL = c.JinaURL
	}
	if c.ForumURL != "" {
		result.ForumURL = c.ForumURL
	}
	if c.ForumLimit != 0 {
		result.ForumLimit = c.ForumLimit
	}
	if c.ResultCount != 0 {
		result.ResultCount = c.ResultCount
	}
	if c.MaxKeywords != 0 {
		result.MaxKeywords = c.MaxKeywords
	}
	if c.WebTimeoutMS != 0 {
		result.WebTimeoutMS = c.WebTimeoutMS
	}
	if c.ForumTimeoutMS != 0 {
		result.ForumTimeoutMS = c.ForumTimeoutMS
	}
	if c.QueryDelayMS != 0 {
		result.QueryDelayMS = c.QueryDelayMS
	}
	if c.DatabaseURL != "" {
		result.DatabaseURL = c.DatabaseURL
	}
	if c.Port != 0 {
		result.Port = c.Port
	}
	if c.LogFile != "" {
		result.LogFile = c.LogFile
	}
	if c.Verbose {
		result.Verbose = true
	}

	return result
}

// WebTimeout returns the web search timeout.
func (c *Config) WebTimeout() time.Duration {
	return time.Duration(c.WebTimeoutMS) * time.Millisecond
}

// ForumTimeout returns the forum search timeout.
func (c *Config) ForumTimeout() time.Duration {
	return time.Duration(c.ForumTimeoutMS) * time.Millisecond
}

// QueryDelay returns the pause between sequential web queries.
func (c *Config) QueryDelay() time.Duration {
	return time.Duration(c.QueryDelayMS) * time.Millisecond
}

// Resolve layers an optional config file over the environment over Defaults.
// File values take precedence over environment values.
func Resolve(path string) (Config, error) {
	env := FromEnv()
	base := env.MergeWithDefaults(Defaults())

	if path == "" {
		return base, base.Validate()
	}

	file, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	merged := file.MergeWithDefaults(base)
	return merged, merged.Validate()
}
