package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"` // "development" or "production" - controls test URL validation
	Server      ServerConfig    `toml:"server" yaml:"server"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
	Storage     StorageConfig   `toml:"storage" yaml:"storage"`
	Fetcher     FetcherConfig   `toml:"fetcher" yaml:"fetcher"`
	Crawler     CrawlerConfig   `toml:"crawler" yaml:"crawler"`
	Gemini      GeminiConfig    `toml:"gemini" yaml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude" yaml:"claude"`
	LLM         LLMConfig       `toml:"llm" yaml:"llm"`
	Scheduler   SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
	Report      ReportConfig    `toml:"report" yaml:"report"`
}

type ServerConfig struct {
	Port int    `toml:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host" yaml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string   `toml:"format" yaml:"format"` // "json" or "text"
	Output     []string `toml:"output" yaml:"output"` // "stdout", "file"
	TimeFormat string   `toml:"time_format" yaml:"time_format"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger" yaml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" yaml:"path"`                         // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup" yaml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// FetcherConfig controls HTTP fetching and rendering escalation
type FetcherConfig struct {
	RequestTimeout   time.Duration `toml:"request_timeout" yaml:"request_timeout"`     // HTTP request timeout
	BodyThreshold    int           `toml:"body_threshold" yaml:"body_threshold"`       // Minimum body size accepted without escalation
	RendererURL      string        `toml:"renderer_url" yaml:"renderer_url"`           // Remote rendering service endpoint
	RendererToken    string        `toml:"renderer_token" yaml:"renderer_token"`       // Remote rendering service API token
	RendererTimeout  time.Duration `toml:"renderer_timeout" yaml:"renderer_timeout"`   // Remote render request timeout
	EnableChrome     bool          `toml:"enable_chrome" yaml:"enable_chrome"`         // Enable local headless Chrome escalation
	ChromeWaitTime   time.Duration `toml:"chrome_wait_time" yaml:"chrome_wait_time"`   // Time to wait for JavaScript to render
	ChromeNavTimeout time.Duration `toml:"chrome_nav_timeout" yaml:"chrome_nav_timeout"`
}

// CrawlerConfig controls the site walker
type CrawlerConfig struct {
	MaxPages     int           `toml:"max_pages" yaml:"max_pages" validate:"gte=1"` // Page budget per crawl
	TimeBudget   time.Duration `toml:"time_budget" yaml:"time_budget"`              // Wall-clock budget per crawl
	RequestDelay time.Duration `toml:"request_delay" yaml:"request_delay"`          // Minimum delay between requests to same domain
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key" yaml:"api_key"`
	Model       string  `toml:"model" yaml:"model"`
	Timeout     string  `toml:"timeout" yaml:"timeout"`       // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit" yaml:"rate_limit"` // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature" yaml:"temperature"`
	TopP        float32 `toml:"top_p" yaml:"top_p"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key" yaml:"api_key"`
	Model       string  `toml:"model" yaml:"model"`
	Timeout     string  `toml:"timeout" yaml:"timeout"`
	RateLimit   string  `toml:"rate_limit" yaml:"rate_limit"`
	Temperature float32 `toml:"temperature" yaml:"temperature"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" yaml:"default_provider" validate:"omitempty,oneof=gemini claude"`
	MaxRetries      int         `toml:"max_retries" yaml:"max_retries" validate:"gte=0"`
	RetryBaseDelay  string      `toml:"retry_base_delay" yaml:"retry_base_delay"` // Duration string, doubled per attempt
}

// SchedulerConfig controls the stale-run sweeper
type SchedulerConfig struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	Schedule   string `toml:"schedule" yaml:"schedule"`       // Cron schedule format
	StaleAfter string `toml:"stale_after" yaml:"stale_after"` // Duration string; runs older than this are failed
}

// ReportConfig controls PDF report rendering
type ReportConfig struct {
	PageSize   string `toml:"page_size" yaml:"page_size"`
	FontFamily string `toml:"font_family" yaml:"font_family"`
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in docify.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Fetcher: FetcherConfig{
			RequestTimeout:   30 * time.Second,
			BodyThreshold:    10000,
			RendererURL:      "https://chrome.browserless.io/content",
			RendererToken:    "", // User must provide token; remote rendering skipped without one
			RendererTimeout:  45 * time.Second,
			EnableChrome:     true,
			ChromeWaitTime:   3 * time.Second,
			ChromeNavTimeout: 30 * time.Second,
		},
		Crawler: CrawlerConfig{
			MaxPages:     10,
			TimeBudget:   5 * time.Minute,
			RequestDelay: 1 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-2.5-flash",
			Timeout:     "5m",
			RateLimit:   "4s", // Default to 4s (15 RPM) for free tier
			Temperature: 0.7,
			TopP:        0.95,
			MaxTokens:   4000,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.7,
			MaxTokens:   4000,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			MaxRetries:      3,
			RetryBaseDelay:  "2s",
		},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			Schedule:   "*/10 * * * *", // Every 10 minutes
			StaleAfter: "30m",
		},
		Report: ReportConfig{
			PageSize:   "A4",
			FontFamily: "Arial",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files. TOML and YAML files are both accepted,
// selected by extension.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: DOCIFY_ENV, fallback: GO_ENV)
	if env := os.Getenv("DOCIFY_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("DOCIFY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DOCIFY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("DOCIFY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("DOCIFY_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("DOCIFY_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("DOCIFY_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Fetcher configuration
	if requestTimeout := os.Getenv("DOCIFY_FETCHER_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Fetcher.RequestTimeout = rt
		}
	}
	if bodyThreshold := os.Getenv("DOCIFY_FETCHER_BODY_THRESHOLD"); bodyThreshold != "" {
		if bt, err := strconv.Atoi(bodyThreshold); err == nil {
			config.Fetcher.BodyThreshold = bt
		}
	}
	if rendererURL := os.Getenv("DOCIFY_FETCHER_RENDERER_URL"); rendererURL != "" {
		config.Fetcher.RendererURL = rendererURL
	}
	if rendererToken := os.Getenv("DOCIFY_FETCHER_RENDERER_TOKEN"); rendererToken != "" {
		config.Fetcher.RendererToken = rendererToken
	} else if rendererToken := os.Getenv("BROWSERLESS_API_KEY"); rendererToken != "" {
		config.Fetcher.RendererToken = rendererToken
	}
	if enableChrome := os.Getenv("DOCIFY_FETCHER_ENABLE_CHROME"); enableChrome != "" {
		if ec, err := strconv.ParseBool(enableChrome); err == nil {
			config.Fetcher.EnableChrome = ec
		}
	}
	if chromeWait := os.Getenv("DOCIFY_FETCHER_CHROME_WAIT_TIME"); chromeWait != "" {
		if cw, err := time.ParseDuration(chromeWait); err == nil {
			config.Fetcher.ChromeWaitTime = cw
		}
	}

	// Crawler configuration
	if maxPages := os.Getenv("DOCIFY_CRAWLER_MAX_PAGES"); maxPages != "" {
		if mp, err := strconv.Atoi(maxPages); err == nil {
			config.Crawler.MaxPages = mp
		}
	}
	if timeBudget := os.Getenv("DOCIFY_CRAWLER_TIME_BUDGET"); timeBudget != "" {
		if tb, err := time.ParseDuration(timeBudget); err == nil {
			config.Crawler.TimeBudget = tb
		}
	}
	if requestDelay := os.Getenv("DOCIFY_CRAWLER_REQUEST_DELAY"); requestDelay != "" {
		if rd, err := time.ParseDuration(requestDelay); err == nil {
			config.Crawler.RequestDelay = rd
		}
	}

	// Gemini configuration
	if apiKey := os.Getenv("DOCIFY_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("DOCIFY_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("DOCIFY_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCIFY_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("DOCIFY_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}
	if maxTokens := os.Getenv("DOCIFY_GEMINI_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Gemini.MaxTokens = mt
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("DOCIFY_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // DOCIFY_ prefix takes priority
	}
	if model := os.Getenv("DOCIFY_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if timeout := os.Getenv("DOCIFY_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCIFY_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}
	if temperature := os.Getenv("DOCIFY_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}
	if maxTokens := os.Getenv("DOCIFY_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("DOCIFY_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if maxRetries := os.Getenv("DOCIFY_LLM_MAX_RETRIES"); maxRetries != "" {
		if mr, err := strconv.Atoi(maxRetries); err == nil {
			config.LLM.MaxRetries = mr
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("DOCIFY_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("DOCIFY_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
	if staleAfter := os.Getenv("DOCIFY_SCHEDULER_STALE_AFTER"); staleAfter != "" {
		config.Scheduler.StaleAfter = staleAfter
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// GeminiTimeout parses the Gemini operation timeout, falling back to 5m.
func (c *Config) GeminiTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Gemini.Timeout); err == nil {
		return d
	}
	return 5 * time.Minute
}

// ClaudeTimeout parses the Claude operation timeout, falling back to 5m.
func (c *Config) ClaudeTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Claude.Timeout); err == nil {
		return d
	}
	return 5 * time.Minute
}

// RetryBaseDelay parses the LLM retry base delay, falling back to 2s.
func (c *Config) RetryBaseDelay() time.Duration {
	if d, err := time.ParseDuration(c.LLM.RetryBaseDelay); err == nil {
		return d
	}
	return 2 * time.Second
}

// StaleAfter parses the stale-run threshold, falling back to 30m.
func (c *Config) StaleAfter() time.Duration {
	if d, err := time.ParseDuration(c.Scheduler.StaleAfter); err == nil {
		return d
	}
	return 30 * time.Minute
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.) are allowed
// Test URLs are only allowed in development mode
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}
