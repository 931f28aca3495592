package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth for this service's own API.
	ServiceAPIKey string

	// Generation provider
	Provider        string // "anthropic" or "openai"
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	// Attio CRM
	AttioAPIKey    string
	AttioWorkspace string

	// Orchestrator
	WorkerCount  int
	MaxQueueSize int

	// Run state
	RunTTL time.Duration

	// Quality gate defaults
	MaxRetries       int
	QualityThreshold int

	// Optional per-section quality gate overrides (YAML file).
	SectionsFile     string
	SectionOverrides map[string]GateOverride
}

// GateOverride tunes the quality gate for a single section. Nil fields keep
// the section's built-in setting.
type GateOverride struct {
	MaxRetries        *int  `yaml:"max_retries"`
	RetryOnRefusal    *bool `yaml:"retry_on_refusal"`
	RetryOnLowQuality *bool `yaml:"retry_on_low_quality"`
	QualityThreshold  *int  `yaml:"quality_threshold"`
}

func Load() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		ServiceAPIKey: os.Getenv("PORTFOLIO_API_KEY"),

		Provider:        envOr("GENERATION_PROVIDER", "anthropic"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", "gpt-4o"),

		AttioAPIKey:    os.Getenv("ATTIO_API_KEY"),
		AttioWorkspace: envOr("ATTIO_WORKSPACE", "aperturesearch"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 20),

		RunTTL: envDuration("RUN_TTL", 6*time.Hour),

		MaxRetries:       envInt("MAX_RETRIES", 2),
		QualityThreshold: envInt("QUALITY_THRESHOLD", 3),

		SectionsFile: os.Getenv("PORTFOLIO_SECTIONS_FILE"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 6 * time.Hour
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 2
	}
	if cfg.QualityThreshold < 0 {
		cfg.QualityThreshold = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("PORTFOLIO_API_KEY is required")
	}
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q (want anthropic or openai)", c.Provider)
	}
	return nil
}

// LoadSectionOverrides reads the optional per-section gate overrides file.
// A missing SectionsFile path is not an error; a malformed file is.
func (c *Config) LoadSectionOverrides() error {
	if c.SectionsFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.SectionsFile)
	if err != nil {
		return fmt.Errorf("read sections file: %w", err)
	}
	var overrides map[string]GateOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse sections file: %w", err)
	}
	c.SectionOverrides = overrides
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
