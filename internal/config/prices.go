package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// PricesConfig holds configuration for the prices command.
type PricesConfig struct {
	RPC               RPCConfig
	Pools             []string
	RegistryURL       string
	IncludeUnofficial bool
	PriceURL          string
	RedisAddr         string
	RedisTTL          time.Duration
	PriceCacheSize    int
	PriceCacheTTL     time.Duration
	HTTPTimeout       time.Duration
	Out               string
	PGDSN             string
	LogLevel          string
}

var pricesDefaults = map[string]interface{}{
	"registry-url":       "https://api.raydium.io/v2/sdk/liquidity/mainnet.json",
	"include-unofficial": false,
	"price-url":          "https://price.jup.ag/v4/price?ids=",
	"redis-ttl":          time.Minute,
	"price-cache-size":   4096,
	"price-cache-ttl":    time.Minute,
	"http-timeout":       30 * time.Second,
	"out":                "./data/lp_prices.jsonl",
}

// LoadPrices merges config file, environment variables, and flags into PricesConfig.
func LoadPrices(cfgFile string, flags *pflag.FlagSet) (PricesConfig, error) {
	v, err := newViper(cfgFile, flags, mergeDefaults(rpcDefaults, pricesDefaults))
	if err != nil {
		return PricesConfig{}, err
	}

	cfg := PricesConfig{
		RPC:               loadRPC(v),
		Pools:             getStringSlice(v, "pool"),
		RegistryURL:       v.GetString("registry-url"),
		IncludeUnofficial: v.GetBool("include-unofficial"),
		PriceURL:          v.GetString("price-url"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisTTL:          v.GetDuration("redis-ttl"),
		PriceCacheSize:    v.GetInt("price-cache-size"),
		PriceCacheTTL:     v.GetDuration("price-cache-ttl"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}
	if err := cfg.validate(); err != nil {
		return PricesConfig{}, err
	}
	return cfg, nil
}

func (c PricesConfig) validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.RPC.BatchSize <= 0 || c.RPC.BatchSize > 100 {
		return fmt.Errorf("batch size must be between 1 and 100")
	}
	if c.PriceCacheSize <= 0 {
		return fmt.Errorf("price cache size must be > 0")
	}
	return nil
}
