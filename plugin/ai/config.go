package ai

import (
	"errors"
	"log/slog"

	"github.com/hrygo/planwise/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig

	// RateLimit is the request rate allowed towards the provider, 0 disables limiting.
	RateLimit float64
	Burst     int
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string  // deepseek, openai, siliconflow, ollama
	Model       string  // deepseek-chat
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1024
	Temperature float32 // default: 0
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.RateLimit = p.AILLMRateLimit
	cfg.Burst = p.AILLMBurst

	// Extraction wants reproducible output, so temperature stays at 0.
	cfg.LLM = LLMConfig{
		Provider:  p.AILLMProvider,
		Model:     p.AILLMModel,
		MaxTokens: 1024,
	}

	switch p.AILLMProvider {
	case "deepseek":
		cfg.LLM.APIKey = p.AIDeepSeekAPIKey
		cfg.LLM.BaseURL = p.AIDeepSeekBaseURL
	case "openai":
		cfg.LLM.APIKey = p.AIOpenAIAPIKey
		cfg.LLM.BaseURL = p.AIOpenAIBaseURL
	case "siliconflow":
		cfg.LLM.APIKey = p.AISiliconFlowAPIKey
		cfg.LLM.BaseURL = p.AISiliconFlowBaseURL
	case "ollama":
		cfg.LLM.BaseURL = p.AIOllamaBaseURL
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	if c.LLM.Provider == "ollama" && c.LLM.BaseURL == "" {
		return errors.New("ollama base URL is required")
	}

	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}

	return nil
}

// NewService builds the completion service described by c.
// A disabled or incomplete config yields a service that always reports
// ServiceUnavailable, which callers absorb through their fallbacks.
func (c *Config) NewService() (LLMService, error) {
	if !c.Enabled {
		return Unavailable("AI is disabled"), nil
	}
	if err := c.Validate(); err != nil {
		slog.Warn("AI is enabled but not configured, completions are unavailable",
			slog.String("provider", c.LLM.Provider),
			slog.String("error", err.Error()))
		return Unavailable("AI is not configured: " + err.Error()), nil
	}
	svc, err := NewLLMService(&c.LLM)
	if err != nil {
		return nil, err
	}
	return NewRateLimitedLLM(svc, c.RateLimit, c.Burst), nil
}
