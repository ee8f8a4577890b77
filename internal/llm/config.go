package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	// ProviderNone disables the hosted tutor; the coach answers from its
	// local rules only.
	ProviderNone = "none"
)

// Config holds LLM provider configuration.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig holds the credentials and model for one provider.
// BaseURL is optional and mostly useful for OpenAI-compatible gateways.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config that runs without a hosted model.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderNone,
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover fills in credentials from the vendors' standard API key
// variables. With no provider selected, keys are probed in the order
// Gemini, OpenAI, Anthropic, OpenRouter and the first one found selects
// the provider. It reports whether cfg now names a hosted provider.
func Discover(cfg *Config) bool {
	probes := []struct {
		env      string
		provider string
		target   *ProviderConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter},
	}
	selected := cfg.Provider != "" && cfg.Provider != ProviderNone
	for _, p := range probes {
		if selected && p.provider != cfg.Provider {
			continue
		}
		k := os.Getenv(p.env)
		if k == "" {
			continue
		}
		if p.target.APIKey == "" {
			p.target.APIKey = k
		}
		cfg.Provider = p.provider
		return true
	}
	return selected
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case ProviderAnthropic:
		pc = c.Anthropic
	case ProviderOpenAI:
		pc = c.OpenAI
	case ProviderGemini:
		pc = c.Gemini
	case ProviderOpenRouter:
		pc = c.OpenRouter
	case ProviderMock, ProviderNone, "":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider (set FLUENT_%s_API_KEY)", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}
