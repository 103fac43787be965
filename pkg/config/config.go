package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Provider names understood by the CLI.
const (
	ProviderGoogleAI   = "googleai"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// providerOrder makes GetDefaultProvider deterministic.
var providerOrder = []string{ProviderGoogleAI, ProviderOpenAI, ProviderOpenRouter}

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Synthesis SynthesisConfig           `yaml:"synthesis"`
	Policy    PolicyConfig              `yaml:"policy"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	HomeCity   string `yaml:"home_city"`
	PromptsDir string `yaml:"prompts_dir"`
	LogDir     string `yaml:"log_dir"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type SynthesisConfig struct {
	// Timeout bounds the generative call; on expiry the itinerary is built locally.
	Timeout time.Duration `yaml:"timeout"`
}

type PolicyConfig struct {
	DenyPatterns []string `yaml:"deny_patterns"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "VoyageAI",
			HomeCity: "Nagpur, India",
			LogDir:   "logs",
		},
		Gateways: map[string]GatewayConfig{},
		Providers: map[string]ProviderConfig{
			ProviderGoogleAI: {Model: "gemini-1.5-flash"},
		},
		Synthesis: SynthesisConfig{Timeout: 8 * time.Second},
	}
}

// LoadConfig reads the YAML file at path on top of Default and then applies
// environment overrides. A missing file is not an error. Variables from a
// .env file in the working directory are loaded first without overriding
// the real environment.
func LoadConfig(path string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if cfg.Synthesis.Timeout <= 0 {
		cfg.Synthesis.Timeout = 8 * time.Second
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	if c.Gateways == nil {
		c.Gateways = map[string]GatewayConfig{}
	}

	// GEMINI_API_KEY wins over GOOGLE_API_KEY.
	key := getenv("GEMINI_API_KEY")
	if key == "" {
		key = getenv("GOOGLE_API_KEY")
	}
	if key != "" {
		p := c.Providers[ProviderGoogleAI]
		p.APIKey = key
		p.Enabled = true
		if p.Model == "" {
			p.Model = "gemini-1.5-flash"
		}
		c.Providers[ProviderGoogleAI] = p
	}

	if key := getenv("OPENAI_API_KEY"); key != "" {
		p := c.Providers[ProviderOpenAI]
		p.APIKey = key
		p.Enabled = true
		if p.Model == "" {
			p.Model = "gpt-4o-mini"
		}
		c.Providers[ProviderOpenAI] = p
	}

	if token := getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		g := c.Gateways["telegram"]
		g.Token = token
		g.Enabled = true
		c.Gateways["telegram"] = g
	}
}

// GetDefaultProvider returns the first enabled provider that has an API key.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for _, name := range providerOrder {
		p, ok := c.Providers[name]
		if ok && p.Enabled && p.APIKey != "" {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// HasCredential reports whether any provider can be used.
func (c *Config) HasCredential() bool {
	name, _ := c.GetDefaultProvider()
	return name != ""
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
