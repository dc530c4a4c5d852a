package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/planwise/internal/version"
)

// EnvPrefix is the prefix of every environment variable read by FromViper.
const EnvPrefix = "PLANWISE"

// Profile is the configuration to start the planner.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// Driver is the database driver of the identity-scoped store (sqlite or postgres).
	// Empty or "none" disables the identity-scoped store.
	Driver string
	// DSN points to where planwise stores identity-scoped records
	DSN string
	// FallbackDSN points to the local sqlite file used for anonymous records
	FallbackDSN string
	// Timezone is the IANA zone used to anchor "today" and "tomorrow"
	Timezone string
	// Version is the current version of the binary
	Version string

	// AI Configuration
	AIEnabled            bool    // PLANWISE_AI_ENABLED
	AILLMProvider        string  // PLANWISE_AI_LLM_PROVIDER (default: deepseek)
	AILLMModel           string  // PLANWISE_AI_LLM_MODEL (default: deepseek-chat)
	AIDeepSeekAPIKey     string  // PLANWISE_AI_DEEPSEEK_API_KEY
	AIDeepSeekBaseURL    string  // PLANWISE_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	AIOpenAIAPIKey       string  // PLANWISE_AI_OPENAI_API_KEY
	AIOpenAIBaseURL      string  // PLANWISE_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AISiliconFlowAPIKey  string  // PLANWISE_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL string  // PLANWISE_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOllamaBaseURL      string  // PLANWISE_AI_OLLAMA_BASE_URL (default: http://localhost:11434)
	AILLMRateLimit       float64 // PLANWISE_AI_LLM_RATE_LIMIT requests per second, 0 disables limiting
	AILLMBurst           int     // PLANWISE_AI_LLM_BURST (default: 1)

	// Categorizer Configuration
	CategoryThreshold float64 // PLANWISE_CATEGORY_THRESHOLD (default: 0.1)
	CategoryCacheSize int     // PLANWISE_CATEGORY_CACHE_SIZE (default: 512)
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "dev")
	v.SetDefault("data", ".")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("timezone", "Local")
	v.SetDefault("ai.llm_provider", "deepseek")
	v.SetDefault("ai.llm_model", "deepseek-chat")
	v.SetDefault("ai.deepseek_base_url", "https://api.deepseek.com")
	v.SetDefault("ai.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.siliconflow_base_url", "https://api.siliconflow.cn/v1")
	v.SetDefault("ai.ollama_base_url", "http://localhost:11434")
	v.SetDefault("ai.llm_burst", 1)
	v.SetDefault("category.threshold", 0.1)
	v.SetDefault("category.cache_size", 512)
}

// NewViper returns a viper instance wired to PLANWISE_* environment variables.
// "ai.llm_provider" is read from PLANWISE_AI_LLM_PROVIDER.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// FromViper loads configuration from v.
func (p *Profile) FromViper(v *viper.Viper) {
	p.Mode = v.GetString("mode")
	p.Data = v.GetString("data")
	p.Driver = v.GetString("driver")
	p.DSN = v.GetString("dsn")
	p.FallbackDSN = v.GetString("fallback_dsn")
	p.Timezone = v.GetString("timezone")
	p.Version = version.GetCurrentVersion(p.Mode)

	p.AIEnabled = v.GetBool("ai.enabled")
	p.AILLMProvider = v.GetString("ai.llm_provider")
	p.AILLMModel = v.GetString("ai.llm_model")
	p.AIDeepSeekAPIKey = v.GetString("ai.deepseek_api_key")
	p.AIDeepSeekBaseURL = v.GetString("ai.deepseek_base_url")
	p.AIOpenAIAPIKey = v.GetString("ai.openai_api_key")
	p.AIOpenAIBaseURL = v.GetString("ai.openai_base_url")
	p.AISiliconFlowAPIKey = v.GetString("ai.siliconflow_api_key")
	p.AISiliconFlowBaseURL = v.GetString("ai.siliconflow_base_url")
	p.AIOllamaBaseURL = v.GetString("ai.ollama_base_url")
	p.AILLMRateLimit = v.GetFloat64("ai.llm_rate_limit")
	p.AILLMBurst = v.GetInt("ai.llm_burst")

	p.CategoryThreshold = v.GetFloat64("category.threshold")
	p.CategoryCacheSize = v.GetInt("category.cache_size")
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and at least one API key or base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	if !p.AIEnabled {
		return false
	}
	switch p.AILLMProvider {
	case "deepseek":
		return p.AIDeepSeekAPIKey != ""
	case "openai":
		return p.AIOpenAIAPIKey != ""
	case "siliconflow":
		return p.AISiliconFlowAPIKey != ""
	case "ollama":
		return p.AIOllamaBaseURL != ""
	}
	return false
}

// Location returns the configured timezone, falling back to time.Local.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" || p.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// HasIdentityStore reports whether an identity-scoped store is configured.
func (p *Profile) HasIdentityStore() bool {
	return p.Driver != ""
}

// FallbackProfile returns a copy of p describing the anonymous sqlite store.
func (p *Profile) FallbackProfile() *Profile {
	fp := *p
	fp.Driver = "sqlite"
	fp.DSN = p.FallbackDSN
	return &fp
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && (p.Data == "" || p.Data == ".") {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "planwise")
		} else {
			p.Data = "/var/opt/planwise"
		}
		if err := os.MkdirAll(p.Data, 0770); err != nil {
			slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "none" {
		p.Driver = ""
	}
	switch p.Driver {
	case "", "postgres":
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("planwise_%s.db", p.Mode))
		}
	default:
		return errors.Errorf("unsupported driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.FallbackDSN == "" {
		p.FallbackDSN = filepath.Join(dataDir, "planwise_local.db")
	}

	if p.Timezone != "" && p.Timezone != "Local" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return errors.Wrapf(err, "invalid timezone %s", p.Timezone)
		}
	}

	if p.CategoryThreshold < 0 || p.CategoryThreshold >= 1 {
		return errors.Errorf("category threshold must be in [0, 1), got %v", p.CategoryThreshold)
	}

	return nil
}
