// Package config loads modulajar settings from a YAML file, a .env file and
// MODULAJAR_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/logging"
	"github.com/pakarguru/modulajar/internal/store"
)

// Config holds all modulajar configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Store       StoreConfig       `yaml:"store"`
	Render      RenderConfig      `yaml:"render"`
	Server      ServerConfig      `yaml:"server"`
	Export      ExportConfig      `yaml:"export"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     logging.Config    `yaml:"logging"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
}

// LLMConfig selects the model provider. An empty Provider picks the first
// provider with a key. APIKey applies to the selected provider.
type LLMConfig struct {
	Provider       string        `yaml:"provider"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	FallbackModels []string      `yaml:"fallback_models"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	RetryAttempts  int           `yaml:"retry_attempts"`
}

type StoreConfig struct {
	// Path of the SQLite database. Empty uses store.DefaultDBPath.
	Path string `yaml:"path"`
	// HistoryKeep is how many generated plans are kept. Zero keeps all.
	HistoryKeep int `yaml:"history_keep"`
}

type RenderConfig struct {
	PaperSize lessonplan.PaperSize `yaml:"paper_size"`
	FontSize  lessonplan.FontSize  `yaml:"font_size"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	APIKey  string `yaml:"api_key"`
	Metrics bool   `yaml:"metrics"`
}

// ExportConfig configures optional S3 upload of exported documents.
type ExportConfig struct {
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Prefix    string `yaml:"s3_prefix"`
}

// S3Enabled reports whether uploads are configured.
func (e ExportConfig) S3Enabled() bool {
	return e.S3Bucket != "" && e.S3Endpoint != ""
}

type MaintenanceConfig struct {
	// Schedule is a standard five-field cron expression.
	Schedule string `yaml:"schedule"`
	// Retention is how long LLM events and history are kept. Zero disables
	// pruning.
	Retention time.Duration `yaml:"retention"`
}

// DefaultsConfig holds values used when the caller supplies none.
type DefaultsConfig struct {
	School          lessonplan.SchoolIdentity `yaml:"school"`
	PromoLink       string                    `yaml:"promo_link"`
	WhatsAppNumber  string                    `yaml:"whatsapp_number"`
	SocialMediaLink string                    `yaml:"social_media_link"`
}

// AppSettings returns the configured settings defaults.
func (d DefaultsConfig) AppSettings() store.AppSettings {
	return store.AppSettings{
		PromoLink:       d.PromoLink,
		WhatsAppNumber:  d.WhatsAppNumber,
		SocialMediaLink: d.SocialMediaLink,
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	llmDefaults := llm.DefaultConfig()
	return &Config{
		LLM: LLMConfig{
			Timeout:       llmDefaults.Timeout,
			RetryAttempts: llmDefaults.Retry.MaxAttempts,
		},
		Store: StoreConfig{HistoryKeep: 3},
		Render: RenderConfig{
			PaperSize: lessonplan.PaperA4,
			FontSize:  lessonplan.Font12,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Maintenance: MaintenanceConfig{
			Schedule:  "0 3 * * *",
			Retention: 90 * 24 * time.Hour,
		},
		Logging: logging.DefaultConfig(),
	}
}

// env lists the environment overrides. Unset variables leave the file
// value untouched.
type env struct {
	Provider       string        `envconfig:"LLM_PROVIDER"`
	APIKey         string        `envconfig:"API_KEY"`
	Model          string        `envconfig:"LLM_MODEL"`
	FallbackModels []string      `envconfig:"FALLBACK_MODELS"`
	BaseURL        string        `envconfig:"LLM_BASE_URL"`
	Timeout        time.Duration `envconfig:"LLM_TIMEOUT"`

	DB          string `envconfig:"DB"`
	HistoryKeep *int   `envconfig:"HISTORY_KEEP"`

	PaperSize string `envconfig:"PAPER_SIZE"`
	FontSize  string `envconfig:"FONT_SIZE"`

	ServerAddr   string `envconfig:"SERVER_ADDR"`
	ServerAPIKey string `envconfig:"SERVER_API_KEY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	PruneSchedule string        `envconfig:"PRUNE_SCHEDULE"`
	Retention     time.Duration `envconfig:"RETENTION"`

	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// Load reads the YAML file at path, then applies .env and environment
// overrides. A missing file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("MODULAJAR", &e); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.apply(e)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(e env) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, e.Provider)
	set(&c.LLM.APIKey, e.APIKey)
	set(&c.LLM.Model, e.Model)
	set(&c.LLM.BaseURL, e.BaseURL)
	if e.FallbackModels != nil {
		c.LLM.FallbackModels = e.FallbackModels
	}
	if e.Timeout > 0 {
		c.LLM.Timeout = e.Timeout
	}

	set(&c.Store.Path, e.DB)
	if e.HistoryKeep != nil {
		c.Store.HistoryKeep = *e.HistoryKeep
	}

	if e.PaperSize != "" {
		c.Render.PaperSize = lessonplan.PaperSize(e.PaperSize)
	}
	if e.FontSize != "" {
		c.Render.FontSize = lessonplan.FontSize(e.FontSize)
	}

	set(&c.Server.Addr, e.ServerAddr)
	set(&c.Server.APIKey, e.ServerAPIKey)

	set(&c.Export.S3Endpoint, e.S3Endpoint)
	set(&c.Export.S3Region, e.S3Region)
	set(&c.Export.S3Bucket, e.S3Bucket)
	set(&c.Export.S3AccessKey, e.S3AccessKey)
	set(&c.Export.S3SecretKey, e.S3SecretKey)

	set(&c.Maintenance.Schedule, e.PruneSchedule)
	if e.Retention > 0 {
		c.Maintenance.Retention = e.Retention
	}

	set(&c.Logging.Level, e.LogLevel)
	set(&c.Logging.Format, e.LogFormat)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Render.PaperSize {
	case lessonplan.PaperA4, lessonplan.PaperLetter:
	default:
		return fmt.Errorf("render.paper_size: unknown paper size %q", c.Render.PaperSize)
	}
	switch c.Render.FontSize {
	case lessonplan.Font10, lessonplan.Font11, lessonplan.Font12:
	default:
		return fmt.Errorf("render.font_size: unknown font size %q", c.Render.FontSize)
	}
	if c.Store.HistoryKeep < 0 {
		return fmt.Errorf("store.history_keep must not be negative")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	if c.Maintenance.Schedule != "" {
		if _, err := cron.ParseStandard(c.Maintenance.Schedule); err != nil {
			return fmt.Errorf("maintenance.schedule: %w", err)
		}
	}
	return nil
}

// DocumentSettings returns the configured paper and font size.
func (c *Config) DocumentSettings() lessonplan.DocumentSettings {
	return lessonplan.DocumentSettings{PaperSize: c.Render.PaperSize, FontSize: c.Render.FontSize}
}

// DBPath returns the configured database path or the default location.
func (c *Config) DBPath() (string, error) {
	if c.Store.Path == "" {
		return store.DefaultDBPath()
	}
	return c.Store.Path, store.EnsureDir(c.Store.Path)
}

// LLMConfig maps the llm section onto llm.Config. Without a configured key
// the standard provider variables (GEMINI_API_KEY, ...) are probed; an
// explicit provider only takes a key of its own kind.
func (c *Config) LLMConfig() llm.Config {
	s := c.LLM
	out := llm.DefaultConfig()
	if s.Provider != "" {
		out.Provider = s.Provider
	}

	out.APIKey = llm.CleanAPIKey(s.APIKey)
	if out.APIKey == "" && out.Provider != llm.ProviderMock {
		if prov, key, ok := llm.DiscoverKey(s.Provider); ok {
			out.Provider, out.APIKey = prov, key
		}
	}
	out.Model = s.Model
	out.BaseURL = s.BaseURL

	// The default fallback list names Gemini models.
	switch {
	case s.FallbackModels != nil:
		out.FallbackModels = s.FallbackModels
	case out.Provider != llm.ProviderGemini:
		out.FallbackModels = nil
	}
	if s.Timeout > 0 {
		out.Timeout = s.Timeout
	}
	if s.RetryAttempts > 0 {
		out.Retry.MaxAttempts = s.RetryAttempts
	}
	return out
}

// DefaultPath returns $XDG_CONFIG_HOME/modulajar/config.yaml, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "modulajar.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "modulajar", "config.yaml")
}

// Save writes c as YAML to path, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
