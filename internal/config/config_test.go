package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Discord: DiscordConfig{Token: "discord-token"},
		OpenAI:  OpenAIConfig{APIKey: "sk-test"},
		Storage: StorageConfig{URL: "https://project.supabase.co", Key: "service-key"},
	}
}

// clearEnv keeps the developer's shell from leaking into Load.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DISCORD_TOKEN", "DISCORD_GUILD_ID", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "SUMMARY_PROVIDER", "SUPABASE_URL", "SUPABASE_KEY",
		"STORAGE_BACKEND", "STORAGE_BUCKET", "STORAGE_REGION", "STORAGE_ACCESS_KEY_ID",
		"MEETING_BOT_INBOX", "MEETING_BOT_HTTP_ADDR", "LOG_LEVEL", "TRANSCRIBE_LANGUAGE",
	} {
		t.Setenv(name, "")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing discord token",
			mutate:  func(c *Config) { c.Discord.Token = "" },
			wantErr: true,
		},
		{
			name:    "missing openai key",
			mutate:  func(c *Config) { c.OpenAI.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "missing storage url",
			mutate:  func(c *Config) { c.Storage.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing storage key",
			mutate:  func(c *Config) { c.Storage.Key = "" },
			wantErr: true,
		},
		{
			name:    "unknown storage backend",
			mutate:  func(c *Config) { c.Storage.Backend = "ftp" },
			wantErr: true,
		},
		{
			name:    "s3 backend without access key id",
			mutate:  func(c *Config) { c.Storage.Backend = "s3" },
			wantErr: true,
		},
		{
			name: "s3 backend with access key id",
			mutate: func(c *Config) {
				c.Storage.Backend = "s3"
				c.Storage.AccessKeyID = "AKIA"
			},
			wantErr: false,
		},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.Summary.Provider = "gemini" },
			wantErr: true,
		},
		{
			name:    "unsupported output format",
			mutate:  func(c *Config) { c.FFmpeg.OutputFormat = "flac" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Storage.Backend != "supabase" {
		t.Errorf("Backend = %v, want supabase", cfg.Storage.Backend)
	}
	if cfg.Storage.Bucket != "meeting" {
		t.Errorf("Bucket = %v, want meeting", cfg.Storage.Bucket)
	}
	if cfg.Summary.Language != "th" {
		t.Errorf("Language = %v, want th", cfg.Summary.Language)
	}
	if cfg.FFmpeg.OutputFormat != "mp3" {
		t.Errorf("OutputFormat = %v, want mp3", cfg.FFmpeg.OutputFormat)
	}
	if cfg.OpenAI.Timeout() != 300*time.Second {
		t.Errorf("OpenAI.Timeout() = %v", cfg.OpenAI.Timeout())
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
discord:
  token: "file-token"
  guild_id: "1234"

openai:
  api_key: "sk-file"
  chat_model: "gpt-4o"

storage:
  url: "https://project.supabase.co"
  key: "file-key"
  bucket: "recordings"

summary:
  language: "en"

logging:
  level: "debug"
  format: "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Discord.GuildID != "1234" {
		t.Errorf("GuildID = %v, want %v", cfg.Discord.GuildID, "1234")
	}
	if cfg.OpenAI.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %v, want %v", cfg.OpenAI.ChatModel, "gpt-4o")
	}
	if cfg.Storage.Bucket != "recordings" {
		t.Errorf("Bucket = %v, want %v", cfg.Storage.Bucket, "recordings")
	}
	if cfg.Summary.Language != "en" {
		t.Errorf("Language = %v, want %v", cfg.Summary.Language, "en")
	}
}

func TestLoadSummaryTemperature(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want float32
	}{
		{"unset uses default", "", 0.3},
		{"explicit zero", "summary:\n  temperature: 0\n", 0},
		{"explicit value", "summary:\n  temperature: 0.8\n", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			content := "discord:\n  token: t\nopenai:\n  api_key: k\nstorage:\n  url: u\n  key: k\n" + tt.yaml
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := cfg.Summary.SamplingTemperature(); got != tt.want {
				t.Errorf("SamplingTemperature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranscribeLanguageIsSeparate(t *testing.T) {
	clearEnv(t)
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.OpenAI.TranscribeLanguage != "" {
		t.Errorf("TranscribeLanguage = %q, want empty for auto-detect", cfg.OpenAI.TranscribeLanguage)
	}

	t.Setenv("DISCORD_TOKEN", "t")
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("SUPABASE_URL", "u")
	t.Setenv("SUPABASE_KEY", "k")
	t.Setenv("TRANSCRIBE_LANGUAGE", "vi")
	loaded, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.OpenAI.TranscribeLanguage != "vi" || loaded.Summary.Language != "th" {
		t.Errorf("transcribe=%q summary=%q", loaded.OpenAI.TranscribeLanguage, loaded.Summary.Language)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("Token = %v, want env-token", cfg.Discord.Token)
	}
	if cfg.Storage.URL != "https://env.supabase.co" {
		t.Errorf("URL = %v", cfg.Storage.URL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "env-token")

	if _, err := Load(""); err == nil {
		t.Error("Load() should fail fast when a required value is missing")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
