package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the research pipeline
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Signals   SignalsConfig   `mapstructure:"signals"`
	Fallbacks FallbacksConfig `mapstructure:"fallbacks"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// LLMConfig selects and configures the inference backend
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai or azure
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Azure       AzureConfig   `mapstructure:"azure"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig configures the public OpenAI chat completions API
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // override for tests
}

// AzureConfig configures an Azure OpenAI deployment
type AzureConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
}

func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "openai":
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return fmt.Errorf("llm.openai.api_key required when provider is openai")
		}
	case "azure":
		if strings.TrimSpace(c.Azure.APIKey) == "" {
			return fmt.Errorf("llm.azure.api_key required when provider is azure")
		}
		if strings.TrimSpace(c.Azure.Endpoint) == "" {
			return fmt.Errorf("llm.azure.endpoint required when provider is azure")
		}
		if strings.TrimSpace(c.Azure.Deployment) == "" {
			return fmt.Errorf("llm.azure.deployment required when provider is azure")
		}
	default:
		return fmt.Errorf("llm.provider must be openai or azure, got %q", c.Provider)
	}
	return nil
}

// SignalsConfig configures the external research signal providers.
// Providers without credentials are simply not constructed.
type SignalsConfig struct {
	GoogleTrends TrendsConfig      `mapstructure:"google_trends"`
	Reddit       RedditConfig      `mapstructure:"reddit"`
	Twitter      TwitterConfig     `mapstructure:"twitter"`
	ProductHunt  ProductHuntConfig `mapstructure:"producthunt"`
	OpenAlex     OpenAlexConfig    `mapstructure:"openalex"`
	Serper       SerperConfig      `mapstructure:"serper"`
	Timeout      time.Duration     `mapstructure:"timeout"`
}

// TrendsConfig configures Google Trends access via SerpAPI
type TrendsConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Geo       string `mapstructure:"geo"`
	Timeframe string `mapstructure:"timeframe"`
}

// RedditConfig configures the public Reddit search API
type RedditConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	UserAgent  string `mapstructure:"user_agent"`
	TimeFilter string `mapstructure:"time_filter"`
	Sort       string `mapstructure:"sort"`
	Limit      int    `mapstructure:"limit"`
}

// TwitterConfig configures Twitter v2 recent search
type TwitterConfig struct {
	BearerToken string `mapstructure:"bearer_token"`
	BaseURL     string `mapstructure:"base_url"`
	MaxResults  int    `mapstructure:"max_results"`
}

// ProductHuntConfig configures the Product Hunt GraphQL API
type ProductHuntConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
	First   int    `mapstructure:"first"`
}

// OpenAlexConfig configures the OpenAlex scholarly works API (no key needed)
type OpenAlexConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	PerPage int    `mapstructure:"per_page"`
}

// SerperConfig configures serper.dev web search
type SerperConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results"`
}

// FallbacksConfig tunes the deterministic outputs substituted when
// inference fails. These are knobs, not behavior switches: fallbacks
// always fire on failure regardless of values here.
type FallbacksConfig struct {
	Confidence          float64 `mapstructure:"confidence"`
	SynthesisConfidence float64 `mapstructure:"synthesis_confidence"`
	TrendCount          int     `mapstructure:"trend_count"`
}

func (c FallbacksConfig) Normalize() FallbacksConfig {
	if c.Confidence <= 0 {
		c.Confidence = 6.0
	}
	if c.SynthesisConfidence <= 0 {
		c.SynthesisConfidence = 6.5
	}
	if c.TrendCount <= 0 {
		c.TrendCount = 3
	}
	return c
}

// StorageConfig contains persistence settings
type StorageConfig struct {
	File FileStorageConfig `mapstructure:"file"`
}

// FileStorageConfig configures JSON snapshot output
type FileStorageConfig struct {
	OutputDir        string `mapstructure:"output_dir"`
	SaveIntermediate bool   `mapstructure:"save_intermediate"`
}

func (f FileStorageConfig) Validate() error {
	if strings.TrimSpace(f.OutputDir) == "" {
		return fmt.Errorf("storage.file.output_dir must not be empty")
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	MetricsPort  int  `mapstructure:"metrics_port"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port required when telemetry is enabled")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	_ = godotenv.Load() // .env keys feed AutomaticEnv below

	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.default_timeout", 30*time.Second)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 4000)
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("llm.openai.model", "gpt-4o")
	viper.SetDefault("llm.azure.api_version", "2024-02-15-preview")
	viper.SetDefault("signals.timeout", 30*time.Second)
	viper.SetDefault("signals.google_trends.base_url", "https://serpapi.com/search")
	viper.SetDefault("signals.google_trends.geo", "US")
	viper.SetDefault("signals.google_trends.timeframe", "now 7-d")
	viper.SetDefault("signals.reddit.base_url", "https://www.reddit.com")
	viper.SetDefault("signals.reddit.user_agent", "ideaforge_problem_hunter/0.1")
	viper.SetDefault("signals.reddit.time_filter", "month")
	viper.SetDefault("signals.reddit.sort", "new")
	viper.SetDefault("signals.reddit.limit", 3)
	viper.SetDefault("signals.twitter.base_url", "https://api.twitter.com")
	viper.SetDefault("signals.twitter.max_results", 10)
	viper.SetDefault("signals.producthunt.base_url", "https://api.producthunt.com/v2/api/graphql")
	viper.SetDefault("signals.producthunt.first", 5)
	viper.SetDefault("signals.openalex.enabled", true)
	viper.SetDefault("signals.openalex.base_url", "https://api.openalex.org")
	viper.SetDefault("signals.openalex.per_page", 5)
	viper.SetDefault("signals.serper.base_url", "https://google.serper.dev")
	viper.SetDefault("signals.serper.max_results", 10)
	viper.SetDefault("fallbacks.confidence", 6.0)
	viper.SetDefault("fallbacks.synthesis_confidence", 6.5)
	viper.SetDefault("fallbacks.trend_count", 3)
	viper.SetDefault("storage.file.output_dir", "output")
	viper.SetDefault("storage.file.save_intermediate", true)
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.metrics_port", 9090)
	viper.SetDefault("telemetry.periodic_logs", false)

	if path == "" {
		viper.AddConfigPath("./app/config") // path to look for the config file in
		viper.AddConfigPath("./config")     // path to look for the config file in
		viper.AddConfigPath(".")            // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("IDEAFORGE")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (IDEAFORGE_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Fallbacks = config.Fallbacks.Normalize()

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.File.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
