// Package config loads fluent settings from config files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // FLUENT_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/fluent/internal/llm"
)

// Config holds application configuration loaded from an optional
// config.yaml, an optional .env file and FLUENT_* environment variables.
type Config struct {
	Env      string `mapstructure:"env"`      // local, production
	DBPath   string `mapstructure:"db"`       // SQLite file; empty means the XDG default
	Timezone string `mapstructure:"timezone"` // IANA zone for streak days; empty means local
	HTTP     HTTP   `mapstructure:"http"`
	LLM      LLM    `mapstructure:"llm"`
}

// HTTP configures `fluent serve`.
type HTTP struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LLM selects and configures the hosted language model.
type LLM struct {
	Provider   string        `mapstructure:"provider"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Anthropic  Provider      `mapstructure:"anthropic"`
	OpenAI     Provider      `mapstructure:"openai"`
	Gemini     Provider      `mapstructure:"gemini"`
	OpenRouter Provider      `mapstructure:"openrouter"`
}

// Provider holds one vendor's credentials.
type Provider struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration. dirs are searched for config.yaml; when none
// are given the working directory and $XDG_CONFIG_HOME/fluent are used.
func Load(dirs ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = defaultDirs()
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	defaults := llm.DefaultConfig()
	v.SetDefault("env", "local")
	v.SetDefault("db", "")
	v.SetDefault("timezone", "")
	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", defaults.Timeout)
	v.SetDefault("llm.anthropic.model", defaults.Anthropic.Model)
	v.SetDefault("llm.openai.model", defaults.OpenAI.Model)
	v.SetDefault("llm.gemini.model", defaults.Gemini.Model)
	v.SetDefault("llm.openrouter.model", defaults.OpenRouter.Model)

	v.SetEnvPrefix("FLUENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider settings drop the "llm" segment: FLUENT_OPENAI_API_KEY.
	for _, p := range []string{"anthropic", "openai", "gemini", "openrouter"} {
		for _, field := range []string{"api_key", "model", "base_url"} {
			_ = v.BindEnv("llm."+p+"."+field, "FLUENT_"+strings.ToUpper(p+"_"+field))
		}
	}
	_ = v.BindEnv("http.cors_origins", "FLUENT_CORS_ORIGINS")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultDirs() []string {
	dirs := []string{"."}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".config")
		}
	}
	if base != "" {
		dirs = append(dirs, filepath.Join(base, "fluent"))
	}
	return dirs
}

// Location returns the time zone used for calendar days.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LLMConfig converts the llm section to an llm.Config. When no provider
// is named, the standard vendor API key variables are probed.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		out.Provider = c.LLM.Provider
	}
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	out.Anthropic = merge(out.Anthropic, c.LLM.Anthropic)
	out.OpenAI = merge(out.OpenAI, c.LLM.OpenAI)
	out.Gemini = merge(out.Gemini, c.LLM.Gemini)
	out.OpenRouter = merge(out.OpenRouter, c.LLM.OpenRouter)
	llm.Discover(&out)
	return out
}

func merge(base llm.ProviderConfig, p Provider) llm.ProviderConfig {
	if p.APIKey != "" {
		base.APIKey = p.APIKey
	}
	if p.Model != "" {
		base.Model = p.Model
	}
	if p.BaseURL != "" {
		base.BaseURL = p.BaseURL
	}
	return base
}
