package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/clerk/pkg/envvar"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NoRetries as max_retries disables retrying. Zero selects the default.
const NoRetries = -1

const (
	EnvGatewayProvider    = "CLERK_GATEWAY_PROVIDER"
	EnvGatewayBaseURL     = "CLERK_GATEWAY_BASE_URL"
	EnvGatewayModel       = "CLERK_GATEWAY_MODEL"
	EnvGatewayFolderID    = "CLERK_GATEWAY_FOLDER_ID"
	EnvGatewayToken       = "CLERK_GATEWAY_TOKEN"
	EnvGatewayTimeout     = "CLERK_GATEWAY_TIMEOUT"
	EnvGatewayMaxRetries  = "CLERK_GATEWAY_MAX_RETRIES"
	EnvGatewayBackoff     = "CLERK_GATEWAY_BACKOFF"
	EnvGatewayRateLimit   = "CLERK_GATEWAY_RATE_LIMIT"
	EnvGatewayBurst       = "CLERK_GATEWAY_BURST"
	EnvGatewayMaxTokens   = "CLERK_GATEWAY_MAX_TOKENS"
	EnvGatewayTemperature = "CLERK_GATEWAY_TEMPERATURE"
)

// GatewayConfig selects the model provider and the retry policy applied
// to every model call.
type GatewayConfig struct {
	Provider    string  `toml:"provider"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	FolderID    string  `toml:"folder_id"`
	Token       string  `toml:"token"`
	Timeout     string  `toml:"timeout"`
	MaxRetries  int     `toml:"max_retries"`
	Backoff     string  `toml:"backoff"`
	RateLimit   float64 `toml:"rate_limit"`
	Burst       int     `toml:"burst"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// ModelName returns the model identifier sent to the provider. With a folder
// id the Yandex form gpt://{folder}/{model} is used.
func (c *GatewayConfig) ModelName() string {
	if c.FolderID != "" {
		return fmt.Sprintf("gpt://%s/%s", c.FolderID, c.Model)
	}
	return c.Model
}

// Retries is the effective retry count after the first attempt.
func (c *GatewayConfig) Retries() int {
	if c.MaxRetries == NoRetries {
		return 0
	}
	return c.MaxRetries
}

func (c *GatewayConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *GatewayConfig) BackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.Backoff)
	return d
}

func (c *GatewayConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *GatewayConfig) Merge(overlay *GatewayConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.FolderID != "" {
		c.FolderID = overlay.FolderID
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Backoff != "" {
		c.Backoff = overlay.Backoff
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
}

func (c *GatewayConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = "yandexgpt-lite"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.Backoff == "" {
		c.Backoff = "1s"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	if c.Burst == 0 {
		c.Burst = 1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

func (c *GatewayConfig) loadEnv() {
	envvar.String(&c.Provider, EnvGatewayProvider)
	envvar.String(&c.BaseURL, EnvGatewayBaseURL)
	envvar.String(&c.Model, EnvGatewayModel)
	envvar.String(&c.FolderID, EnvGatewayFolderID)
	envvar.String(&c.Token, EnvGatewayToken)
	envvar.String(&c.Timeout, EnvGatewayTimeout)
	envvar.Int(&c.MaxRetries, EnvGatewayMaxRetries)
	envvar.String(&c.Backoff, EnvGatewayBackoff)
	envvar.Float(&c.RateLimit, EnvGatewayRateLimit)
	envvar.Int(&c.Burst, EnvGatewayBurst)
	envvar.Int(&c.MaxTokens, EnvGatewayMaxTokens)
	envvar.Float(&c.Temperature, EnvGatewayTemperature)
}

func (c *GatewayConfig) validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderAnthropic {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.Token == "" {
		return fmt.Errorf("token required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if c.MaxRetries < NoRetries {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if _, err := time.ParseDuration(c.Backoff); err != nil {
		return fmt.Errorf("invalid backoff: %w", err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit: %v", c.RateLimit)
	}
	if c.Burst < 1 {
		return fmt.Errorf("invalid burst: %d", c.Burst)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	return nil
}
