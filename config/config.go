package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Mode selects how tool implementations behave.
const (
	// ModeMock returns deterministic synthetic data from every tool.
	ModeMock = "mock"
	// ModeLive delegates to configured external providers where credentials exist.
	ModeLive = "live"
)

// Supported completion providers for delegated response composition.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Settings is the central configuration for the agent backend. Values are
// sourced from a YAML file (optional) and then overridden by environment
// variables, so a bare process with no file still starts with safe mock
// defaults.
type Settings struct {
	AppName string `yaml:"app_name"`
	Env     string `yaml:"env"` // dev | staging | prod

	// Storage collaborators. Empty values degrade the corresponding memory
	// layers to their in-process fallbacks.
	SQLitePath string `yaml:"sqlite_path"`
	RedisURL   string `yaml:"redis_url"`

	// ToolMode switches all tool implementations between mock and live.
	ToolMode string `yaml:"tool_mode"`

	// Tool provider credentials (live mode only).
	SerpAPIKey          string `yaml:"serpapi_key"`
	ReplicateAPIToken   string `yaml:"replicate_api_token"`
	ReplicateModel      string `yaml:"replicate_model"`
	LibreTranslateURL   string `yaml:"libretranslate_url"`
	LibreTranslateKey   string `yaml:"libretranslate_api_key"`
	ProviderTimeoutSecs int    `yaml:"provider_timeout_seconds"`

	// Completion provider for delegated response composition.
	LLMProvider     string `yaml:"llm_provider"` // none | openai | anthropic
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
}

// Default returns the baseline mock-mode settings.
func Default() *Settings {
	return &Settings{
		AppName:             "athir",
		Env:                 "dev",
		SQLitePath:          "./athir.db",
		RedisURL:            "redis://localhost:6379/0",
		ToolMode:            ModeMock,
		ProviderTimeoutSecs: 30,
		LLMProvider:         ProviderNone,
		OpenAIModel:         "gpt-4.1-mini",
	}
}

// Load builds Settings from an optional YAML file path plus environment
// overrides. A missing file is not an error; an unreadable or malformed file is.
func Load(path string) (*Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	s.applyEnv()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromEnv builds Settings from environment variables only.
func FromEnv() *Settings {
	s := Default()
	s.applyEnv()
	return s
}

func (s *Settings) applyEnv() {
	envStr(&s.AppName, "ATHIR_APP_NAME")
	envStr(&s.Env, "ATHIR_ENV")
	envStr(&s.SQLitePath, "ATHIR_SQLITE_PATH")
	envStr(&s.RedisURL, "ATHIR_REDIS_URL")
	envStr(&s.ToolMode, "ATHIR_TOOL_MODE")
	envStr(&s.SerpAPIKey, "SERPAPI_KEY")
	envStr(&s.ReplicateAPIToken, "REPLICATE_API_TOKEN")
	envStr(&s.ReplicateModel, "REPLICATE_MODEL")
	envStr(&s.LibreTranslateURL, "LIBRETRANSLATE_URL")
	envStr(&s.LibreTranslateKey, "LIBRETRANSLATE_API_KEY")
	envInt(&s.ProviderTimeoutSecs, "ATHIR_PROVIDER_TIMEOUT_SECONDS")
	envStr(&s.LLMProvider, "ATHIR_LLM_PROVIDER")
	envStr(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	envStr(&s.OpenAIModel, "OPENAI_MODEL")
	envStr(&s.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envStr(&s.AnthropicModel, "ANTHROPIC_MODEL")
}

func (s *Settings) validate() error {
	switch s.ToolMode {
	case ModeMock, ModeLive:
	default:
		return fmt.Errorf("invalid tool_mode %q (want %q or %q)", s.ToolMode, ModeMock, ModeLive)
	}
	switch s.LLMProvider {
	case ProviderNone, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid llm_provider %q", s.LLMProvider)
	}
	return nil
}

// Live reports whether live tool integrations are enabled.
func (s *Settings) Live() bool { return s.ToolMode == ModeLive }

func envStr(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
