package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceDotenv  ValueSource = "dotenv"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// PlaceholderAPIKey is the sample value shipped in .env templates.
const PlaceholderAPIKey = "your_gemini_api_key_here"

// Selection modes.
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	EnvFile    string
	CLILLM     string
	CLIDBPath  string
	CLIMode    string
	CLITopic   string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`
	EnvFile    string `json:"env_file"`

	DBPath      ResolvedValue `json:"db_path"`
	LLMProvider ResolvedValue `json:"llm_provider"`
	LLMBaseURL  ResolvedValue `json:"llm_base_url"`
	Mode        ResolvedValue `json:"mode"`
	Topic       ResolvedValue `json:"topic"`
	Theme       ResolvedValue `json:"theme"`
	RateLimit   ResolvedValue `json:"rate_limit_per_minute"`

	LLMKeys map[string]ResolvedValue `json:"-"`
}

type fileConfig struct {
	DBPath string `yaml:"db_path"`
	Mode   string `yaml:"mode"`
	Topic  string `yaml:"topic"`
	Theme  string `yaml:"theme"`
	LLM    struct {
		Provider           string `yaml:"provider"`
		APIKey             string `yaml:"api_key"`
		BaseURL            string `yaml:"base_url"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	} `yaml:"llm"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".factdice", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}
	envFile := strings.TrimSpace(opts.EnvFile)
	if envFile == "" {
		envFile = ".env"
	}

	out := ResolvedConfig{
		ConfigPath: path,
		EnvFile:    envFile,
		DBPath:     ResolvedValue{Value: "~/.factdice/factdice.db", Source: SourceDefault, From: "built-in default"},
		Mode:       ResolvedValue{Value: ModeRemote, Source: SourceDefault, From: "built-in default"},
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.LLMProvider, cfg.LLM.Provider, SourceConfig, path)
		apply(&out.LLMBaseURL, cfg.LLM.BaseURL, SourceConfig, path)
		apply(&out.Mode, cfg.Mode, SourceConfig, path)
		apply(&out.Topic, cfg.Topic, SourceConfig, path)
		apply(&out.Theme, cfg.Theme, SourceConfig, path)
		if cfg.LLM.RateLimitPerMinute > 0 {
			apply(&out.RateLimit, strconv.Itoa(cfg.LLM.RateLimitPerMinute), SourceConfig, path)
		}
		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := providerOf(cfg.LLM.Provider)
			if provider == "" {
				provider = "google"
			}
			out.LLMKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	dotenv, err := loadDotenv(envFile)
	if err != nil {
		return out, err
	}
	fromDotenv, err := parseEnv(dotenv)
	if err != nil {
		return out, fmt.Errorf("parsing %s: %w", envFile, err)
	}
	out.applyEnv(fromDotenv, SourceDotenv, envFile+":")

	fromEnv, err := parseEnv(nil)
	if err != nil {
		return out, err
	}
	out.applyEnv(fromEnv, SourceEnv, "")

	apply(&out.LLMProvider, opts.CLILLM, SourceCLI, "--llm")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.Mode, opts.CLIMode, SourceCLI, "--mode")
	apply(&out.Topic, opts.CLITopic, SourceCLI, "--topic")

	out.Mode.Value = strings.ToLower(out.Mode.Value)
	if out.Mode.Value != ModeRemote && out.Mode.Value != ModeLocal {
		return out, fmt.Errorf("invalid mode %q from %s (expected %s or %s)", out.Mode.Value, out.Mode.From, ModeRemote, ModeLocal)
	}

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// APIKeyForProvider returns the resolved key for a provider or "provider/model"
// value. Placeholder keys come back with an empty Value.
func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		provider = "google"
	}
	v, ok := r.LLMKeys[provider]
	if !ok || !KeyConfigured(v.Value) {
		return ResolvedValue{}
	}
	return v
}

// RatePerMinute returns the configured request budget, or 0 when unset.
func (r ResolvedConfig) RatePerMinute() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.RateLimit.Value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// KeyConfigured reports whether key is a usable API key.
func KeyConfigured(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

// envConfig is the variable set read from the process environment and from
// the .env file.
type envConfig struct {
	DBPath    string `env:"FACTDICE_DB"`
	LLM       string `env:"FACTDICE_LLM"`
	Mode      string `env:"FACTDICE_MODE"`
	Topic     string `env:"FACTDICE_TOPIC"`
	Theme     string `env:"FACTDICE_THEME"`
	RateLimit string `env:"FACTDICE_RATE_LIMIT"`

	GoogleKey     string `env:"GOOGLE_API_KEY"`
	GeminiKey     string `env:"GEMINI_API_KEY"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY"`
}

// parseEnv reads envConfig from environ, or from the process environment
// when environ is nil.
func parseEnv(environ map[string]string) (envConfig, error) {
	var ec envConfig
	var err error
	if environ == nil {
		err = env.Parse(&ec)
	} else {
		err = env.ParseWithOptions(&ec, env.Options{Environment: environ})
	}
	if err != nil {
		return envConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return ec, nil
}

func (r *ResolvedConfig) applyEnv(ec envConfig, source ValueSource, fromPrefix string) {
	values := []struct {
		dst  *ResolvedValue
		raw  string
		name string
	}{
		{&r.DBPath, ec.DBPath, "FACTDICE_DB"},
		{&r.LLMProvider, ec.LLM, "FACTDICE_LLM"},
		{&r.Mode, ec.Mode, "FACTDICE_MODE"},
		{&r.Topic, ec.Topic, "FACTDICE_TOPIC"},
		{&r.Theme, ec.Theme, "FACTDICE_THEME"},
		{&r.RateLimit, ec.RateLimit, "FACTDICE_RATE_LIMIT"},
	}
	for _, v := range values {
		apply(v.dst, v.raw, source, fromPrefix+v.name)
	}

	// Later entries win when several keys for one provider are set.
	keys := []struct{ raw, name, provider string }{
		{ec.GoogleKey, "GOOGLE_API_KEY", "google"},
		{ec.GeminiKey, "GEMINI_API_KEY", "google"},
		{ec.OpenRouterKey, "OPENROUTER_API_KEY", "openrouter"},
	}
	for _, k := range keys {
		if v := strings.TrimSpace(k.raw); v != "" {
			r.LLMKeys[k.provider] = ResolvedValue{Value: v, Source: source, From: fromPrefix + k.name}
		}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// loadDotenv reads a .env file. A missing file yields an empty map.
func loadDotenv(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := parseDotenv(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// parseDotenv decodes .env syntax and drops keys with empty values.
func parseDotenv(b []byte) (map[string]string, error) {
	m, err := godotenv.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		if strings.TrimSpace(v) == "" {
			delete(m, k)
		}
	}
	return m, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
