package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadPricesEnvAndFlags(t *testing.T) {
	t.Setenv("WHALESCOPE_RPC", "https://rpc.example.org")
	t.Setenv("WHALESCOPE_REDIS_ADDR", "localhost:6379")

	flags := pflag.NewFlagSet("prices", pflag.ContinueOnError)
	flags.StringSlice("pool", nil, "")
	flags.Int("batch-size", 100, "")
	if err := flags.Parse([]string{"--pool", "poolA, poolB,", "--batch-size", "50"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadPrices("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPC.URL != "https://rpc.example.org" {
		t.Fatalf("unexpected rpc url: %s", cfg.RPC.URL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.RedisAddr)
	}
	if cfg.RPC.BatchSize != 50 {
		t.Fatalf("unexpected batch size: %d", cfg.RPC.BatchSize)
	}
	if len(cfg.Pools) != 2 || cfg.Pools[0] != "poolA" || cfg.Pools[1] != "poolB" {
		t.Fatalf("unexpected pools: %v", cfg.Pools)
	}
	if cfg.RPC.RetryBackoff != 500*time.Millisecond || cfg.RPC.Commitment != "confirmed" {
		t.Fatalf("unexpected defaults: %+v", cfg.RPC)
	}
}

func TestLoadPricesRejectsBatchAboveLimit(t *testing.T) {
	t.Setenv("WHALESCOPE_BATCH_SIZE", "250")
	if _, err := LoadPrices("", nil); err == nil {
		t.Fatalf("expected error for batch size above 100")
	}
}

func TestLoadWhalesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whalescope.yaml")
	content := []byte("count: 25\nholder-concurrency: 4\nwatchlist: ./tmp/watch.json\nupdate-watchlist: true\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadWhales(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Count != 25 || cfg.HolderConcurrency != 4 || !cfg.UpdateWatchlist {
		t.Fatalf("unexpected whales config: %+v", cfg)
	}
	if cfg.Watchlist != "./tmp/watch.json" {
		t.Fatalf("unexpected watchlist: %s", cfg.Watchlist)
	}
	if cfg.RegistryURL == "" || cfg.PriceURL == "" {
		t.Fatalf("expected price defaults: %+v", cfg.PricesConfig)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WHALESCOPE_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("WHALESCOPE_TEST_DOTENV", "")
	os.Unsetenv("WHALESCOPE_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("WHALESCOPE_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestLoadHoldingsDefaults(t *testing.T) {
	cfg, err := LoadHoldings("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Watchlist != "./data/watchlist.json" || cfg.HTTPTimeout != time.Minute {
		t.Fatalf("unexpected holdings config: %+v", cfg)
	}
}
