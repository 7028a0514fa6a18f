package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with an empty home so no
// stray dealnotes.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	return dir
}

// unsetForTest clears key for the test and restores it afterwards, so values
// written by the .env loader do not leak into other tests.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "dealnotes.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, llm.DefaultConfig(), cfg.LLM)
	assert.Equal(t, 2, cfg.Pipeline.MaxRepairs)
	assert.Equal(t, 5, cfg.Pipeline.ContextMaxItems)
	assert.Equal(t, 2000, cfg.Pipeline.ContextMaxChars)
	assert.Equal(t, 300, cfg.Pipeline.MessageMaxChars)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "dealnotes.yaml"), `
db_path: /tmp/crm.db
log_level: debug
llm:
  endpoint: http://gpu-box:11434/
  model: mistral
  tasks:
    email:
      temperature: 0.4
pipeline:
  max_repairs: 1
  signature: Sam from Acme
`)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/crm.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.Endpoint)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 0.4, cfg.LLM.Tasks[llm.TaskEmail].Temperature)
	assert.Equal(t, llm.DefaultConfig().Tasks[llm.TaskEmail].MaxTokens, cfg.LLM.Tasks[llm.TaskEmail].MaxTokens)
	assert.Equal(t, 1, cfg.Pipeline.MaxRepairs)
	assert.Equal(t, "Sam from Acme", cfg.Pipeline.Signature)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "dealnotes.yaml"), "llm:\n  model: mistral\n")
	t.Setenv("DEALNOTES_LLM_MODEL", "qwen2.5")
	t.Setenv("DEALNOTES_PIPELINE_CONTEXT_MAX_ITEMS", "8")
	t.Setenv("DEALNOTES_LLM_TASKS_EXTRACT_TIMEOUT_MS", "5000")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Pipeline.ContextMaxItems)
	assert.Equal(t, 5000, cfg.LLM.TaskTimeout(llm.TaskExtract))
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	isolate(t)
	t.Setenv("DEALNOTES_LLM_TIMEOUT_MS", "soon")
	t.Setenv("DEALNOTES_LLM_MAX_RETRIES", "-3")
	t.Setenv("DEALNOTES_LLM_ENABLED", "maybe")
	t.Setenv("DEALNOTES_LLM_TASKS_MESSAGE_TEMPERATURE", "7")
	t.Setenv("DEALNOTES_PIPELINE_MESSAGE_MAX_CHARS", "3")
	t.Setenv("DEALNOTES_LOG_LEVEL", "chatty")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	def := llm.DefaultConfig()
	assert.Equal(t, def.TimeoutMs, cfg.LLM.TimeoutMs)
	assert.Equal(t, def.MaxRetries, cfg.LLM.MaxRetries)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, def.Tasks[llm.TaskMessage].Temperature, cfg.LLM.Tasks[llm.TaskMessage].Temperature)
	assert.Equal(t, 300, cfg.Pipeline.MessageMaxChars)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	unsetForTest(t, "DEALNOTES_HTTP_ADDR")
	t.Setenv("DEALNOTES_LLM_MODEL", "from-env")
	writeFile(t, filepath.Join(dir, ".env"), "DEALNOTES_HTTP_ADDR=127.0.0.1:9090\nDEALNOTES_LLM_MODEL=from-dotenv\n")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}

func TestLoad_ExplicitFiles(t *testing.T) {
	dir := isolate(t)
	unsetForTest(t, "DEALNOTES_DB_PATH")
	path := filepath.Join(dir, "conf", "crm.yaml")
	writeFile(t, path, "http_addr: :7000\n")
	envPath := filepath.Join(dir, "conf", "crm.env")
	writeFile(t, envPath, "DEALNOTES_DB_PATH=/data/crm.db\n")

	cfg, err := Load(Options{ConfigFile: path, EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "/data/crm.db", cfg.DBPath)

	_, err = Load(Options{ConfigFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	_, err = Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "dealnotes.yaml"), "llm: [unclosed\n")

	_, err := Load(Options{})
	assert.Error(t, err)
}
