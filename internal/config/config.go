package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord     DiscordConfig     `yaml:"discord"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Summary     SummaryConfig     `yaml:"summary"`
	Storage     StorageConfig     `yaml:"storage"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	HTTP        HTTPConfig        `yaml:"http"`
}

type DiscordConfig struct {
	Token string `yaml:"token"`
	// GuildID scopes slash command registration; empty registers globally.
	GuildID string `yaml:"guild_id"`
}

type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	TranscribeModel string `yaml:"transcribe_model"`
	// TranscribeLanguage is an ISO-639-1 hint for Whisper. Empty lets it
	// detect the spoken language.
	TranscribeLanguage string `yaml:"transcribe_language"`
	ChatModel          string `yaml:"chat_model"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

const defaultTemperature = 0.3

type SummaryConfig struct {
	Provider string `yaml:"provider"` // openai or gemini
	Language string `yaml:"language"`
	// Temperature is nil when unset so an explicit 0 survives.
	Temperature *float32 `yaml:"temperature"`
	TeamReport  bool     `yaml:"team_report"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend"` // supabase, s3 or local
	URL            string `yaml:"url"`
	Key            string `yaml:"key"`
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	AccessKeyID    string `yaml:"access_key_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type FFmpegConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	OutputFormat   string `yaml:"output_format"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PathsConfig struct {
	Inbox string `yaml:"inbox"`
	Temp  string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"DISCORD_TOKEN", &cfg.Discord.Token},
		{"DISCORD_GUILD_ID", &cfg.Discord.GuildID},
		{"OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"TRANSCRIBE_LANGUAGE", &cfg.OpenAI.TranscribeLanguage},
		{"SUMMARY_PROVIDER", &cfg.Summary.Provider},
		{"SUPABASE_URL", &cfg.Storage.URL},
		{"SUPABASE_KEY", &cfg.Storage.Key},
		{"STORAGE_BACKEND", &cfg.Storage.Backend},
		{"STORAGE_BUCKET", &cfg.Storage.Bucket},
		{"STORAGE_REGION", &cfg.Storage.Region},
		{"STORAGE_ACCESS_KEY_ID", &cfg.Storage.AccessKeyID},
		{"MEETING_BOT_INBOX", &cfg.Paths.Inbox},
		{"MEETING_BOT_HTTP_ADDR", &cfg.HTTP.Addr},
		{"LOG_LEVEL", &cfg.Logging.Level},
	}

	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required (DISCORD_TOKEN)")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required (OPENAI_API_KEY)")
	}
	if c.Storage.URL == "" {
		return fmt.Errorf("storage.url is required (SUPABASE_URL)")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required (SUPABASE_KEY)")
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = "supabase"
	}
	switch c.Storage.Backend {
	case "supabase", "local":
	case "s3":
		if c.Storage.AccessKeyID == "" {
			return fmt.Errorf("storage.access_key_id is required for the s3 backend (STORAGE_ACCESS_KEY_ID)")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of supabase, s3, local", c.Storage.Backend)
	}

	if c.Summary.Provider == "" {
		c.Summary.Provider = "openai"
	}
	switch c.Summary.Provider {
	case "openai":
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required when summary.provider is gemini (GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("summary.provider %q is not one of openai, gemini", c.Summary.Provider)
	}

	if c.FFmpeg.OutputFormat == "" {
		c.FFmpeg.OutputFormat = "mp3"
	}
	switch c.FFmpeg.OutputFormat {
	case "mp3", "wav", "ogg":
	default:
		return fmt.Errorf("ffmpeg.output_format %q is not one of mp3, wav, ogg", c.FFmpeg.OutputFormat)
	}

	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "meeting"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.TimeoutSeconds == 0 {
		c.Storage.TimeoutSeconds = 60
	}
	if c.OpenAI.TranscribeModel == "" {
		c.OpenAI.TranscribeModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.TimeoutSeconds == 0 {
		c.OpenAI.TimeoutSeconds = 300
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Summary.Language == "" {
		c.Summary.Language = "th"
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.TimeoutSeconds == 0 {
		c.FFmpeg.TimeoutSeconds = 300
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = os.TempDir()
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// Timeout bounds a single OpenAI or Gemini request.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SamplingTemperature is the configured summary temperature or the default.
func (c SummaryConfig) SamplingTemperature() float32 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// Timeout bounds a single object upload.
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout bounds a single ffmpeg invocation.
func (c FFmpegConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
