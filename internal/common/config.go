package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	App         AppConfig       `toml:"app"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Progress    ProgressConfig  `toml:"progress"`
	Logging     LoggingConfig   `toml:"logging"`
	AI          AIConfig        `toml:"ai"`
	Strategy    StrategyConfig  `toml:"strategy"`
	Export      ExportConfig    `toml:"export"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Metrics     MetricsConfig   `toml:"metrics"`
}

type AppConfig struct {
	Name        string   `toml:"name"`
	APIPrefix   string   `toml:"api_prefix"`
	CORSOrigins []string `toml:"cors_origins"` // Empty or "*" allows all origins
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete the database before opening
}

// ProgressConfig selects where research strategy progress is kept
type ProgressConfig struct {
	Backend string      `toml:"backend"` // "memory", "badger" or "redis"
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`        // Record lifetime, e.g. "24h"
	Prefix   string `toml:"key_prefix"` // Key namespace
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // debug, info, warn, error
	Format     string   `toml:"format"`      // text or json
	Output     []string `toml:"output"`      // stdout, console, file
	TimeFormat string   `toml:"time_format"` // Go time layout for log lines
}

// AIProviderType names a supported AI vendor
type AIProviderType string

const (
	AIProviderOpenAI AIProviderType = "openai"
	AIProviderClaude AIProviderType = "claude"
	AIProviderGemini AIProviderType = "gemini"
	AIProviderAzure  AIProviderType = "azure_openai"
	AIProviderMock   AIProviderType = "mock"
)

type AIConfig struct {
	DefaultProvider    AIProviderType `toml:"default_provider"`      // openai, claude, gemini, azure_openai, mock
	FallbackToMock     bool           `toml:"fallback_to_mock"`      // Use canned responses when no provider is configured
	RateLimitPerMinute int            `toml:"rate_limit_per_minute"` // Shared across providers
	Timeout            string         `toml:"timeout"`               // Per request, e.g. "60s"
	MaxRetries         int            `toml:"max_retries"`           // Retries on rate limit errors
	OpenAI             OpenAIConfig   `toml:"openai"`
	Claude             ClaudeConfig   `toml:"claude"`
	Gemini             GeminiConfig   `toml:"gemini"`
	Azure              AzureConfig    `toml:"azure"`
}

type OpenAIConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type AzureConfig struct {
	APIKey      string  `toml:"api_key"`
	Endpoint    string  `toml:"endpoint"`   // https://<resource>.openai.azure.com
	Deployment  string  `toml:"deployment"` // Deployment name, used as the model
	APIVersion  string  `toml:"api_version"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// StrategyConfig controls research strategy execution
type StrategyConfig struct {
	PhaseDelay       string `toml:"phase_delay"`       // Pause between phases, e.g. "1s"
	ExecutionTimeout string `toml:"execution_timeout"` // Upper bound for one run
	AIEnrichment     bool   `toml:"ai_enrichment"`     // Ask the AI provider to refine phase data
	ReaperSchedule   string `toml:"reaper_schedule"`   // Cron expression for cleanup
	RetainFinished   string `toml:"retain_finished"`   // How long finished strategies are kept
}

type ExportConfig struct {
	Dir string `toml:"dir"` // Where rendered exports are written
	TTL string `toml:"ttl"` // Download link lifetime
}

type WebSocketConfig struct {
	Enabled          bool   `toml:"enabled"`
	ThrottleInterval string `toml:"throttle_interval"` // Min gap between progress pushes per strategy
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		App: AppConfig{
			Name:        "Ideas Matter",
			APIPrefix:   "/api/v1",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/ideasmatter",
				ResetOnStartup: false,
			},
		},
		Progress: ProgressConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Host:   "localhost",
				Port:   6379,
				TTL:    "24h",
				Prefix: "ideasmatter:strategy:",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		AI: AIConfig{
			DefaultProvider:    AIProviderOpenAI,
			FallbackToMock:     true,
			RateLimitPerMinute: 60,
			Timeout:            "60s",
			MaxRetries:         3,
			OpenAI: OpenAIConfig{
				Model:       "gpt-4-turbo-preview",
				BaseURL:     "https://api.openai.com/v1",
				MaxTokens:   2000,
				Temperature: 0.7,
			},
			Claude: ClaudeConfig{
				Model:       "claude-3-opus-20240229",
				MaxTokens:   2000,
				Temperature: 0.7,
			},
			Gemini: GeminiConfig{
				Model:       "gemini-pro",
				MaxTokens:   2000,
				Temperature: 0.7,
			},
			Azure: AzureConfig{
				APIVersion:  "2024-02-15-preview",
				MaxTokens:   2000,
				Temperature: 0.7,
			},
		},
		Strategy: StrategyConfig{
			PhaseDelay:       "1s",
			ExecutionTimeout: "30m",
			AIEnrichment:     false,
			ReaperSchedule:   "*/15 * * * *",
			RetainFinished:   "24h",
		},
		Export: ExportConfig{
			Dir: "./data/exports",
			TTL: "24h",
		},
		WebSocket: WebSocketConfig{
			Enabled:          true,
			ThrottleInterval: "250ms",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults -> files in order -> env.
// CLI flags are applied afterwards by ApplyFlagOverrides.
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

		// Unmarshal merges into the existing values
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variables to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("IDEAS_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("IDEAS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("IDEAS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origins := os.Getenv("IDEAS_CORS_ORIGINS"); origins != "" {
		config.App.CORSOrigins = splitList(origins)
	}

	// Storage configuration
	if badgerPath := os.Getenv("IDEAS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Progress store
	if backend := os.Getenv("IDEAS_PROGRESS_BACKEND"); backend != "" {
		config.Progress.Backend = backend
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Progress.Redis.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Progress.Redis.Port = p
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Progress.Redis.Password = password
	}

	// Logging configuration
	if level := os.Getenv("IDEAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("IDEAS_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// AI configuration
	if provider := os.Getenv("IDEAS_AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = AIProviderType(provider)
	}
	if rate := os.Getenv("RATE_LIMIT_PER_MINUTE"); rate != "" {
		if r, err := strconv.Atoi(rate); err == nil {
			config.AI.RateLimitPerMinute = r
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.AI.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	// CLAUDE_API_KEY is accepted for compatibility with older deployments
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.AI.Claude.APIKey = key
	} else if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		config.AI.Claude.APIKey = key
	}
	if model := os.Getenv("CLAUDE_MODEL"); model != "" {
		config.AI.Claude.Model = model
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.AI.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.AI.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
		config.AI.Azure.APIKey = key
	}
	if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
		config.AI.Azure.Endpoint = endpoint
	}
	if deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); deployment != "" {
		config.AI.Azure.Deployment = deployment
	}

	// Strategy execution
	if delay := os.Getenv("IDEAS_STRATEGY_PHASE_DELAY"); delay != "" {
		config.Strategy.PhaseDelay = delay
	}
	if enrich := os.Getenv("IDEAS_STRATEGY_AI_ENRICHMENT"); enrich != "" {
		if b, err := strconv.ParseBool(enrich); err == nil {
			config.Strategy.AIEnrichment = b
		}
	}

	if dir := os.Getenv("IDEAS_EXPORT_DIR"); dir != "" {
		config.Export.Dir = dir
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
// Flags have the highest priority (override env vars and config files)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Progress.Backend {
	case "memory", "badger", "redis":
	default:
		return fmt.Errorf("unsupported progress backend: %s (expected memory, badger or redis)", c.Progress.Backend)
	}

	switch c.AI.DefaultProvider {
	case AIProviderOpenAI, AIProviderClaude, AIProviderGemini, AIProviderAzure, AIProviderMock:
	default:
		return fmt.Errorf("unsupported ai provider: %s", c.AI.DefaultProvider)
	}

	if c.Strategy.ReaperSchedule != "" {
		if err := ValidateSchedule(c.Strategy.ReaperSchedule); err != nil {
			return fmt.Errorf("strategy.reaper_schedule: %w", err)
		}
	}

	return nil
}

// ValidateSchedule validates a standard 5-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ParseDuration parses s and falls back to def when s is empty or invalid
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
