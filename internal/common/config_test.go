package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, 10000, config.Fetcher.BodyThreshold)
	assert.Equal(t, 10, config.Crawler.MaxPages)
	assert.Equal(t, 5*time.Minute, config.Crawler.TimeBudget)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFilesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docify.toml")
	content := `
[server]
port = 9090

[crawler]
max_pages = 3

[llm]
default_provider = "claude"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 3, config.Crawler.MaxPages)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	// Untouched values keep defaults
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromFilesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docify.yaml")
	content := `
server:
  port: 7070
gemini:
  model: gemini-test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "gemini-test", config.Gemini.Model)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCIFY_SERVER_PORT", "6060")
	t.Setenv("DOCIFY_LOG_LEVEL", "debug")
	t.Setenv("DOCIFY_CRAWLER_MAX_PAGES", "5")
	t.Setenv("DOCIFY_LLM_DEFAULT_PROVIDER", "claude")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 6060, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 5, config.Crawler.MaxPages)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Level = "loud"
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.LLM.DefaultProvider = "copilot"
	assert.Error(t, config.Validate())
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, 4444, "0.0.0.0")
	assert.Equal(t, 4444, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 4444, config.Server.Port)
}

func TestDurationHelpers(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, 5*time.Minute, config.GeminiTimeout())
	assert.Equal(t, 2*time.Second, config.RetryBaseDelay())
	assert.Equal(t, 30*time.Minute, config.StaleAfter())

	config.Gemini.Timeout = "bogus"
	assert.Equal(t, 5*time.Minute, config.GeminiTimeout())
}
