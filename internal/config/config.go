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

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Records   Records   `mapstructure:"records"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Assets    Assets    `mapstructure:"assets"`
	Cache     Cache     `mapstructure:"cache"`
	Server    Server    `mapstructure:"server"`
	Messaging Messaging `mapstructure:"messaging"`
	Output    Output    `mapstructure:"output"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
	SiteURL  string `mapstructure:"site_url"` // Public base URL for published articles
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	ImageModel   string  `mapstructure:"image_model"`
	Timeout      string  `mapstructure:"timeout"`
	MaxTokens    int32   `mapstructure:"max_tokens"`
	Temperature  float32 `mapstructure:"temperature"`
}

// Records holds record store (Airtable-style) configuration
type Records struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseID  string        `mapstructure:"base_id"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout string        `mapstructure:"timeout"`
	Tables  RecordsTables `mapstructure:"tables"`
}

// RecordsTables maps entity kinds to table names in the record store
type RecordsTables struct {
	Topics    string `mapstructure:"topics"`
	Contents  string `mapstructure:"contents"`
	Leads     string `mapstructure:"leads"`
	Contracts string `mapstructure:"contracts"`
	Usage     string `mapstructure:"usage"`
}

// Pipeline holds generation pipeline tuning
type Pipeline struct {
	BatchSize      int    `mapstructure:"batch_size"`
	BatchDelay     string `mapstructure:"batch_delay"`
	MinCount       int    `mapstructure:"min_count"`
	MaxCount       int    `mapstructure:"max_count"`
	MinTitleRunes  int    `mapstructure:"min_title_runes"`
	MaxTitleRunes  int    `mapstructure:"max_title_runes"`
	DedupWindow    string `mapstructure:"dedup_window"`
	ExistingCap    int    `mapstructure:"existing_cap"` // Max existing titles embedded in a prompt
}

// Assets holds thumbnail/static asset configuration
type Assets struct {
	OutputDirectory string `mapstructure:"output_directory"`
	PublicPrefix    string `mapstructure:"public_prefix"`
	FallbackPath    string `mapstructure:"fallback_path"`
	Width           int    `mapstructure:"width"`
	Height          int    `mapstructure:"height"`
	JPEGQuality     int    `mapstructure:"jpeg_quality"`
}

// Cache holds local title-cache configuration
type Cache struct {
	Directory string `mapstructure:"directory"`
	TTL       string `mapstructure:"ttl"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CronSecret   string        `mapstructure:"cron_secret"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds CORS configuration for the API
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Messaging holds notification webhook configuration
type Messaging struct {
	Timeout  string         `mapstructure:"timeout"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// SlackConfig holds Slack webhook configuration
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
	IconEmoji  string `mapstructure:"icon_emoji"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Output holds published-article file output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".copydesk")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".copydesk-cache")
	viper.SetDefault("app.site_url", "https://example.com")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.image_model", "gemini-2.5-flash-image")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Record store defaults
	viper.SetDefault("records.base_url", "https://api.airtable.com/v0")
	viper.SetDefault("records.timeout", "15s")
	viper.SetDefault("records.tables.topics", "Topics")
	viper.SetDefault("records.tables.contents", "Contents")
	viper.SetDefault("records.tables.leads", "Leads")
	viper.SetDefault("records.tables.contracts", "Contracts")
	viper.SetDefault("records.tables.usage", "Usage")

	// Pipeline defaults
	viper.SetDefault("pipeline.batch_size", 25)
	viper.SetDefault("pipeline.batch_delay", "2s")
	viper.SetDefault("pipeline.min_count", 10)
	viper.SetDefault("pipeline.max_count", 100)
	viper.SetDefault("pipeline.min_title_runes", 10)
	viper.SetDefault("pipeline.max_title_runes", 100)
	viper.SetDefault("pipeline.dedup_window", "336h") // Two weeks
	viper.SetDefault("pipeline.existing_cap", 100)

	// Asset defaults
	viper.SetDefault("assets.output_directory", "public/images/contents")
	viper.SetDefault("assets.public_prefix", "/images/contents")
	viper.SetDefault("assets.fallback_path", "/images/solution-website.webp")
	viper.SetDefault("assets.width", 1200)
	viper.SetDefault("assets.height", 630)
	viper.SetDefault("assets.jpeg_quality", 82)

	// Cache defaults
	viper.SetDefault("cache.directory", ".copydesk-cache")
	viper.SetDefault("cache.ttl", "10m")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", false)

	// Messaging defaults
	viper.SetDefault("messaging.timeout", "10s")
	viper.SetDefault("messaging.slack.username", "Copydesk")
	viper.SetDefault("messaging.slack.icon_emoji", ":newspaper:")

	// Output defaults
	viper.SetDefault("output.directory", "content/posts")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("records.api_key", []string{
		"AIRTABLE_API_KEY",
		"AIRTABLE_TOKEN",
	})

	bindEnvKeys("records.base_id", []string{
		"AIRTABLE_BASE_ID",
	})

	bindEnvKeys("server.cron_secret", []string{
		"CRON_SECRET",
	})

	bindEnvKeys("messaging.slack.webhook_url", []string{
		"SLACK_WEBHOOK_URL",
		"SLACK_WEBHOOK",
	})

	bindEnvKeys("messaging.telegram.bot_token", []string{
		"TELEGRAM_BOT_TOKEN",
	})

	bindEnvKeys("messaging.telegram.chat_id", []string{
		"TELEGRAM_CHAT_ID",
	})

	bindEnvKeys("app.site_url", []string{
		"SITE_URL",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"COPYDESK_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	if config.Assets.OutputDirectory != "" {
		config.Assets.OutputDirectory = expandPath(config.Assets.OutputDirectory)
	}
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}

	durations := map[string]string{
		"ai.gemini.timeout":     config.AI.Gemini.Timeout,
		"records.timeout":       config.Records.Timeout,
		"pipeline.batch_delay":  config.Pipeline.BatchDelay,
		"pipeline.dedup_window": config.Pipeline.DedupWindow,
		"cache.ttl":             config.Cache.TTL,
		"messaging.timeout":     config.Messaging.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	// The Gemini API key is checked at client construction, not here:
	// serve can run without it and still answer read and CRM endpoints.
	if config.Records.APIKey == "" {
		errors = append(errors, "Record store API key is required. Set AIRTABLE_API_KEY environment variable or records.api_key in config file")
	}

	if config.Records.BaseID == "" {
		errors = append(errors, "Record store base ID is required. Set AIRTABLE_BASE_ID environment variable or records.base_id in config file")
	}

	if config.Pipeline.BatchSize <= 0 {
		errors = append(errors, fmt.Sprintf("pipeline.batch_size must be positive, got %d", config.Pipeline.BatchSize))
	}

	if config.Pipeline.MinCount > config.Pipeline.MaxCount {
		errors = append(errors, fmt.Sprintf("pipeline.min_count (%d) exceeds pipeline.max_count (%d)", config.Pipeline.MinCount, config.Pipeline.MaxCount))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App             { return Get().App }
func GetAI() AI               { return Get().AI }
func GetRecords() Records     { return Get().Records }
func GetPipeline() Pipeline   { return Get().Pipeline }
func GetAssets() Assets       { return Get().Assets }
func GetCache() Cache         { return Get().Cache }
func GetServer() Server       { return Get().Server }
func GetMessaging() Messaging { return Get().Messaging }
func GetOutput() Output       { return Get().Output }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string  { return Get().AI.Gemini.Model }
func GetCronSecret() string   { return Get().Server.CronSecret }
func IsDebugMode() bool       { return Get().App.Debug }

// BatchDelay returns the parsed inter-batch delay.
func (p Pipeline) BatchDelayDuration() time.Duration {
	d, err := time.ParseDuration(p.BatchDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// DedupWindowDuration returns the parsed trailing dedup window.
func (p Pipeline) DedupWindowDuration() time.Duration {
	d, err := time.ParseDuration(p.DedupWindow)
	if err != nil {
		return 14 * 24 * time.Hour
	}
	return d
}

// TTLDuration returns the parsed cache TTL.
func (c Cache) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
