package configloader

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_PORT", "LOG_LEVEL", "ALCHEMY_API_KEY", "COINGECKO_API_KEY", "COINGECKO_PLAN",
		"CRYPTO_TRACKER_PASSWORD", "AUTH_REQUIRED", "BASIC_AUTH_USER", "BASIC_AUTH_PASSWORD",
		"STORAGE_PATH", "NATS_URL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.CoinGecko.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGecko.BaseURL = %q, want the public host", cfg.CoinGecko.BaseURL)
	}
	if cfg.Bitcoin.BalanceMode != "funded" {
		t.Errorf("Bitcoin.BalanceMode = %q, want funded", cfg.Bitcoin.BalanceMode)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelayMs != 500 || cfg.Retry.MaxDelayMs != 5000 {
		t.Errorf("Retry = %+v, want 3 attempts, 500ms base, 5000ms cap", cfg.Retry)
	}
	if !cfg.DemoMode() {
		t.Error("DemoMode() = false without an Alchemy key, want true")
	}
}

func TestLoad_FileAndEnvOverlay(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "9000"
coingecko:
  plan: pro
  apiKey: file-key
rateLimits:
  coingecko:
    requestsPerSecond: 0.5
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("ALCHEMY_API_KEY", "alchemy")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("BASIC_AUTH_USER", "admin")
	t.Setenv("BASIC_AUTH_PASSWORD", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("Server.Port = %q, want env value 9100", cfg.Server.Port)
	}
	if cfg.CoinGecko.BaseURL != "https://pro-api.coingecko.com/api/v3" {
		t.Errorf("CoinGecko.BaseURL = %q, want the pro host", cfg.CoinGecko.BaseURL)
	}
	if cfg.DemoMode() {
		t.Error("DemoMode() = true with an Alchemy key, want false")
	}
	if !cfg.Auth.Required {
		t.Error("Auth.Required = false, want true")
	}
	if rl := cfg.RateLimit("coingecko"); rl.RequestsPerSecond != 0.5 || rl.Burst != 1 {
		t.Errorf("RateLimit(coingecko) = %+v, want 0.5 rps burst 1", rl)
	}
	if rl := cfg.RateLimit("bitcoin"); rl.RequestsPerSecond != 5 {
		t.Errorf("RateLimit(bitcoin) = %+v, want default 5 rps", rl)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "server: [\n"},
		{name: "bad balance mode", content: "bitcoin:\n  balanceMode: weird\n"},
		{name: "auth without credentials", content: "", env: map[string]string{"AUTH_REQUIRED": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() error = nil, want an error")
			}
		})
	}
}
