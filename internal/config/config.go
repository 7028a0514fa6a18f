// Package config resolves dealnotes settings from defaults, an optional
// dealnotes.yaml, a .env file and DEALNOTES_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const EnvPrefix = "DEALNOTES"

type Config struct {
	DBPath   string
	HTTPAddr string
	LogLevel slog.Level
	LLM      llm.LLMConfig
	Pipeline intelligence.PipelineConfig
}

// Options points Load at explicit files. Empty fields use the search paths.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load never fails on a bad value; it keeps the default instead. It fails
// only when a config file exists but cannot be parsed, or when an explicit
// ConfigFile is missing.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("dealnotes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := homeDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return fromViper(v), nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dealnotes")
}

// DefaultDBPath is ~/.dealnotes/dealnotes.db, or ./dealnotes.db when the
// home directory is unknown.
func DefaultDBPath() string {
	if dir := homeDir(); dir != "" {
		return filepath.Join(dir, "dealnotes.db")
	}
	return "dealnotes.db"
}

func setDefaults(v *viper.Viper) {
	lc := llm.DefaultConfig()
	pc := intelligence.DefaultPipelineConfig()

	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "warn")

	v.SetDefault("llm.enabled", lc.Enabled)
	v.SetDefault("llm.log_calls", lc.LogCalls)
	v.SetDefault("llm.endpoint", lc.Endpoint)
	v.SetDefault("llm.model", lc.Model)
	v.SetDefault("llm.timeout_ms", lc.TimeoutMs)
	v.SetDefault("llm.max_retries", lc.MaxRetries)
	for _, task := range llm.Tasks {
		tc := lc.Tasks[task]
		prefix := "llm.tasks." + string(task) + "."
		v.SetDefault(prefix+"temperature", tc.Temperature)
		v.SetDefault(prefix+"max_tokens", tc.MaxTokens)
		v.SetDefault(prefix+"timeout_ms", tc.TimeoutMs)
	}

	v.SetDefault("pipeline.max_repairs", pc.MaxRepairs)
	v.SetDefault("pipeline.context_max_items", pc.ContextMaxItems)
	v.SetDefault("pipeline.context_max_chars", pc.ContextMaxChars)
	v.SetDefault("pipeline.message_max_chars", pc.MessageMaxChars)
	v.SetDefault("pipeline.signature", pc.Signature)
}

func fromViper(v *viper.Viper) *Config {
	lc := llm.DefaultConfig()
	pc := intelligence.DefaultPipelineConfig()

	cfg := &Config{
		DBPath:   strings.TrimSpace(v.GetString("db_path")),
		HTTPAddr: strings.TrimSpace(v.GetString("http_addr")),
		LogLevel: parseLevel(v.GetString("log_level")),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	lc.Enabled = boolOr(v, "llm.enabled", lc.Enabled)
	lc.LogCalls = boolOr(v, "llm.log_calls", lc.LogCalls)
	if s := strings.TrimSpace(v.GetString("llm.endpoint")); s != "" {
		lc.Endpoint = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(v.GetString("llm.model")); s != "" {
		lc.Model = s
	}
	lc.TimeoutMs = intOr(v, "llm.timeout_ms", lc.TimeoutMs, 1)
	lc.MaxRetries = intOr(v, "llm.max_retries", lc.MaxRetries, 0)
	for _, task := range llm.Tasks {
		tc := lc.Tasks[task]
		prefix := "llm.tasks." + string(task) + "."
		tc.Temperature = floatOr(v, prefix+"temperature", tc.Temperature, 0, 2)
		tc.MaxTokens = intOr(v, prefix+"max_tokens", tc.MaxTokens, 1)
		tc.TimeoutMs = intOr(v, prefix+"timeout_ms", tc.TimeoutMs, 1)
		lc.Tasks[task] = tc
	}

	pc.MaxRepairs = intOr(v, "pipeline.max_repairs", pc.MaxRepairs, 0)
	pc.ContextMaxItems = intOr(v, "pipeline.context_max_items", pc.ContextMaxItems, 0)
	pc.ContextMaxChars = intOr(v, "pipeline.context_max_chars", pc.ContextMaxChars, 0)
	pc.MessageMaxChars = intOr(v, "pipeline.message_max_chars", pc.MessageMaxChars, pc.MessageMinChars+1)
	pc.Signature = strings.TrimSpace(v.GetString("pipeline.signature"))

	cfg.LLM = lc
	cfg.Pipeline = pc
	return cfg
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn
	}
	return level
}

func intOr(v *viper.Viper, key string, def, floor int) int {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil || n < floor {
		return def
	}
	return n
}

func floatOr(v *viper.Viper, key string, def, lo, hi float64) float64 {
	f, err := cast.ToFloat64E(v.Get(key))
	if err != nil || f < lo || f > hi {
		return def
	}
	return f
}

func boolOr(v *viper.Viper, key string, def bool) bool {
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return def
	}
	return b
}
