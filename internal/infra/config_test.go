package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: maker
  version: 0.1.0
trading:
  mode: paper
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Trading.IdleWaitSec != 5 {
		t.Errorf("IdleWaitSec = %d, want default 5", cfg.Trading.IdleWaitSec)
	}
	if cfg.Trading.OrderTimeoutSec != 15 {
		t.Errorf("OrderTimeoutSec = %d, want default 15", cfg.Trading.OrderTimeoutSec)
	}
	if cfg.Trading.HarvestEvery != 200 {
		t.Errorf("HarvestEvery = %d, want default 200", cfg.Trading.HarvestEvery)
	}
	if cfg.Venue.RecvWindowMS != 5000 {
		t.Errorf("RecvWindowMS = %d, want default 5000", cfg.Venue.RecvWindowMS)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MAKER_API_KEY", "env-key")
	t.Setenv("MAKER_API_SECRET", "env-secret")

	path := writeConfig(t, `
trading:
  mode: real
venue:
  rest_url: https://api.binance.us
  ws_url: wss://stream.binance.us:9443/ws
  api_key: file-key
  secret_key: file-secret
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Venue.APIKey != "env-key" || cfg.Venue.SecretKey != "env-secret" {
		t.Errorf("env override not applied: %q/%q", cfg.Venue.APIKey, cfg.Venue.SecretKey)
	}
}

func TestLoadConfigRejectsRealWithoutKeys(t *testing.T) {
	t.Setenv("MAKER_API_KEY", "")
	t.Setenv("MAKER_API_SECRET", "")

	path := writeConfig(t, `
trading:
  mode: real
venue:
  rest_url: https://api.binance.us
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("real mode without credentials must be rejected")
	}
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	path := writeConfig(t, `
trading:
  mode: yolo
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("unknown trading mode must be rejected")
	}
}
