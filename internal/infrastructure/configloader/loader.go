package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	ReadTimeout    int      `yaml:"readTimeout"`
	WriteTimeout   int      `yaml:"writeTimeout"`
	IdleTimeout    int      `yaml:"idleTimeout"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// AuthConfig holds the shared-password check and the optional basic-auth gate.
type AuthConfig struct {
	Password          string `yaml:"password"`
	Required          bool   `yaml:"required"`
	BasicAuthUser     string `yaml:"basicAuthUser"`
	BasicAuthPassword string `yaml:"basicAuthPassword"`
}

// StorageConfig selects where addresses and tags are persisted.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"inMemory"`
	SeedFile string `yaml:"seedFile"`
}

// AlchemyConfig holds the EVM and Solana provider settings.
type AlchemyConfig struct {
	APIKey       string            `yaml:"apiKey"`
	URLTemplate  string            `yaml:"urlTemplate"` // fmt template: network, key
	SolanaRPCURL string            `yaml:"solanaRpcUrl"`
	RPCURLs      map[string]string `yaml:"rpcUrls"` // per-chain overrides
}

// BitcoinConfig holds the explorer settings.
type BitcoinConfig struct {
	BaseURL     string `yaml:"baseURL"`
	BalanceMode string `yaml:"balanceMode"` // funded or net
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	Plan                 string `yaml:"plan"` // demo or pro
	BaseURL              string `yaml:"baseURL"`
	VsCurrency           string `yaml:"vsCurrency"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the price resolver.
type TokenPriceServiceConfig struct {
	CacheTTLMinutes        int `yaml:"cacheTTLMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRefreshes int `yaml:"max_concurrent_refreshes"`
	RPCCallTimeoutSeconds  int `yaml:"rpc_call_timeout_seconds"`
	RequestTimeoutSeconds  int `yaml:"request_timeout_seconds"`
	RecentTransactions     int `yaml:"recent_transactions"`
}

// RateLimitConfig bounds outbound request rates per provider.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// RetryConfig controls backoff for transient upstream failures.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	BaseDelayMs int `yaml:"baseDelayMs"`
	MaxDelayMs  int `yaml:"maxDelayMs"`
}

// TokensConfig points at an optional supported-token catalogue file.
type TokensConfig struct {
	CatalogueFile string `yaml:"catalogueFile"`
}

// NATSConfig enables forwarding of refresh events.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig               `yaml:"server"`
	Logging       LoggingConfig              `yaml:"logging"`
	Auth          AuthConfig                 `yaml:"auth"`
	Storage       StorageConfig              `yaml:"storage"`
	Alchemy       AlchemyConfig              `yaml:"alchemy"`
	Bitcoin       BitcoinConfig              `yaml:"bitcoin"`
	CoinGecko     CoinGeckoConfig            `yaml:"coingecko"`
	TokenPriceSvc TokenPriceServiceConfig    `yaml:"tokenPriceService"`
	Performance   PerformanceConfig          `yaml:"performance"`
	RateLimits    map[string]RateLimitConfig `yaml:"rateLimits"` // keyed by provider: bitcoin, alchemy, solana, coingecko
	Retry         RetryConfig                `yaml:"retry"`
	Tokens        TokensConfig               `yaml:"tokens"`
	NATS          NATSConfig                 `yaml:"nats"`
}

// DemoMode reports whether the balance providers lack credentials. EVM and
// Solana refreshes are unavailable and the store is seeded with demo data.
func (c *Config) DemoMode() bool {
	return c.Alchemy.APIKey == ""
}

// RateLimit returns the limit configured for provider, or the default.
func (c *Config) RateLimit(provider string) RateLimitConfig {
	if rl, ok := c.RateLimits[provider]; ok && rl.RequestsPerSecond > 0 {
		if rl.Burst <= 0 {
			rl.Burst = 1
		}
		return rl
	}
	return RateLimitConfig{RequestsPerSecond: 5, Burst: 5}
}

// Load reads the YAML configuration file from the given path, fills defaults
// and overlays environment variables. A missing file yields defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		logrus.Infof("Loading configuration from path: %s", path)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults and environment", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.loadEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 120
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Storage.Path == "" && !c.Storage.InMemory {
		c.Storage.Path = "data/portfolio"
		logrus.Infof("Storage.Path not set, defaulting to %s", c.Storage.Path)
	}
	if c.Alchemy.URLTemplate == "" {
		c.Alchemy.URLTemplate = "https://%s.g.alchemy.com/v2/%s"
	}
	if c.Bitcoin.BaseURL == "" {
		c.Bitcoin.BaseURL = "https://mempool.space/api"
	}
	if c.Bitcoin.BalanceMode == "" {
		c.Bitcoin.BalanceMode = "funded"
	}
	if c.CoinGecko.Plan == "" {
		c.CoinGecko.Plan = "demo"
	}
	if c.CoinGecko.BaseURL == "" {
		if strings.EqualFold(c.CoinGecko.Plan, "pro") && c.CoinGecko.APIKey != "" {
			c.CoinGecko.BaseURL = "https://pro-api.coingecko.com/api/v3"
		} else {
			c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		}
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", c.CoinGecko.BaseURL)
	}
	if c.CoinGecko.VsCurrency == "" {
		c.CoinGecko.VsCurrency = "usd"
	}
	if c.CoinGecko.RequestTimeoutMillis <= 0 {
		c.CoinGecko.RequestTimeoutMillis = 10000
	}
	if c.TokenPriceSvc.CacheTTLMinutes <= 0 {
		c.TokenPriceSvc.CacheTTLMinutes = 5
		logrus.Infof("CacheTTLMinutes for TokenPriceSvc not set, defaulting to %d minutes", c.TokenPriceSvc.CacheTTLMinutes)
	}
	if c.TokenPriceSvc.CleanupIntervalMinutes <= 0 {
		c.TokenPriceSvc.CleanupIntervalMinutes = 10
	}
	if c.Performance.MaxConcurrentRefreshes <= 0 {
		c.Performance.MaxConcurrentRefreshes = 4
	}
	if c.Performance.RPCCallTimeoutSeconds <= 0 {
		c.Performance.RPCCallTimeoutSeconds = 15
	}
	if c.Performance.RequestTimeoutSeconds <= 0 {
		c.Performance.RequestTimeoutSeconds = 10
	}
	if c.Performance.RecentTransactions <= 0 {
		c.Performance.RecentTransactions = 10
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelayMs <= 0 {
		c.Retry.BaseDelayMs = 500
	}
	if c.Retry.MaxDelayMs <= 0 {
		c.Retry.MaxDelayMs = 5000
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "portfolio.refresh"
	}
}

func (c *Config) validate() error {
	switch c.Bitcoin.BalanceMode {
	case "funded", "net":
	default:
		return fmt.Errorf("invalid bitcoin.balanceMode %q: must be funded or net", c.Bitcoin.BalanceMode)
	}
	if c.Auth.Required && (c.Auth.BasicAuthUser == "" || c.Auth.BasicAuthPassword == "") {
		return fmt.Errorf("auth.required is set but basic auth credentials are missing")
	}
	return nil
}

func (c *Config) loadEnv() {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if key := os.Getenv("ALCHEMY_API_KEY"); key != "" {
		c.Alchemy.APIKey = key
	}
	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		c.CoinGecko.APIKey = key
	}
	if plan := os.Getenv("COINGECKO_PLAN"); plan != "" {
		c.CoinGecko.Plan = plan
	}
	if pwd := os.Getenv("CRYPTO_TRACKER_PASSWORD"); pwd != "" {
		c.Auth.Password = pwd
	}
	if required := os.Getenv("AUTH_REQUIRED"); required != "" {
		c.Auth.Required = parseBool(required)
	}
	if user := os.Getenv("BASIC_AUTH_USER"); user != "" {
		c.Auth.BasicAuthUser = user
	}
	if pwd := os.Getenv("BASIC_AUTH_PASSWORD"); pwd != "" {
		c.Auth.BasicAuthPassword = pwd
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		c.NATS.URL = url
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
