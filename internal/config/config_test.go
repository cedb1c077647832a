package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakarguru/modulajar/internal/lessonplan"
)

// clearEnv blanks every variable Load and LLMConfig read so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MODULAJAR_LLM_PROVIDER", "MODULAJAR_API_KEY", "MODULAJAR_LLM_MODEL",
		"MODULAJAR_FALLBACK_MODELS", "MODULAJAR_LLM_BASE_URL", "MODULAJAR_LLM_TIMEOUT",
		"MODULAJAR_DB", "MODULAJAR_HISTORY_KEEP", "MODULAJAR_PAPER_SIZE", "MODULAJAR_FONT_SIZE",
		"MODULAJAR_SERVER_ADDR", "MODULAJAR_SERVER_API_KEY",
		"MODULAJAR_S3_ENDPOINT", "MODULAJAR_S3_REGION", "MODULAJAR_S3_BUCKET",
		"MODULAJAR_S3_ACCESS_KEY", "MODULAJAR_S3_SECRET_KEY",
		"MODULAJAR_PRUNE_SCHEDULE", "MODULAJAR_RETENTION",
		"MODULAJAR_LOG_LEVEL", "MODULAJAR_LOG_FORMAT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Store.HistoryKeep)
	assert.Equal(t, lessonplan.PaperA4, cfg.Render.PaperSize)
	assert.Equal(t, lessonplan.Font12, cfg.Render.FontSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
llm:
  provider: openai
  api_key: sk-from-file
  model: gpt-4o-mini
  timeout: 30s
store:
  history_keep: 5
render:
  paper_size: LETTER
  font_size: 11pt
defaults:
  school:
    schoolName: SMP Negeri 1
    location: Bandung
  promo_link: https://example.org/promo
maintenance:
  schedule: "0 4 * * *"
  retention: 720h
`)
	t.Setenv("MODULAJAR_LLM_MODEL", "gpt-4.1-mini")
	t.Setenv("MODULAJAR_HISTORY_KEEP", "0")
	t.Setenv("MODULAJAR_FALLBACK_MODELS", "gpt-4o, gpt-4o-mini")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model, "env overrides file")
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0, cfg.Store.HistoryKeep, "explicit zero from env is kept")
	assert.Equal(t, lessonplan.PaperLetter, cfg.Render.PaperSize)
	assert.Equal(t, 11, cfg.Render.FontSize.Points())
	assert.Equal(t, "SMP Negeri 1", cfg.Defaults.School.SchoolName)
	assert.Equal(t, "https://example.org/promo", cfg.Defaults.AppSettings().PromoLink)
	assert.Equal(t, 720*time.Hour, cfg.Maintenance.Retention)
	assert.Len(t, cfg.LLM.FallbackModels, 2)

	lc := cfg.LLMConfig()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-from-file", lc.APIKey)
	assert.Equal(t, "gpt-4.1-mini", lc.Model)
	assert.Equal(t, []string{"gpt-4.1-mini", "gpt-4o", "gpt-4o-mini"}, lc.Models())
	assert.Equal(t, 30*time.Second, lc.Timeout)
	require.NoError(t, lc.Validate())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"paper":    "render:\n  paper_size: A5\n",
		"font":     "render:\n  font_size: 14pt\n",
		"keep":     "store:\n  history_keep: -1\n",
		"schedule": "maintenance:\n  schedule: every day\n",
		"yaml":     "llm: [unclosed\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLLMConfig_DiscoversStandardKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", " AIza-test\n")

	cfg := DefaultConfig()
	lc := cfg.LLMConfig()

	assert.Equal(t, "gemini", lc.Provider)
	assert.Equal(t, "AIza-test", lc.APIKey)
	assert.Equal(t, "gemini-3-flash-preview", lc.Models()[0])
	assert.Len(t, lc.Models(), 4)
}

func TestLLMConfig_ExplicitProviderIgnoresOtherKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIza-test")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	lc := cfg.LLMConfig()

	assert.Equal(t, "anthropic", lc.Provider)
	assert.Empty(t, lc.APIKey)
	assert.Nil(t, lc.FallbackModels, "gemini fallbacks do not apply to other providers")
	assert.Error(t, lc.Validate())
}

func TestLLMConfig_Mock(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.LLM.Provider = "mock"
	lc := cfg.LLMConfig()
	assert.Equal(t, "mock", lc.Provider)
	assert.NoError(t, lc.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Defaults.WhatsAppNumber = "628111"
	cfg.Render.FontSize = lessonplan.Font10
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "628111", loaded.Defaults.WhatsAppNumber)
	assert.Equal(t, lessonplan.Font10, loaded.Render.FontSize)
	assert.Equal(t, cfg.Maintenance.Retention, loaded.Maintenance.Retention)
}

func TestDBPath(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "a", "b.db")

	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, cfg.Store.Path, p)
	_, err = os.Stat(filepath.Dir(p))
	assert.NoError(t, err)
}

func TestExportS3Enabled(t *testing.T) {
	assert.False(t, ExportConfig{}.S3Enabled())
	assert.True(t, ExportConfig{S3Endpoint: "https://s3.example.org", S3Bucket: "modul"}.S3Enabled())
}
