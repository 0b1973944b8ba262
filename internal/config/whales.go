package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// WhalesConfig holds configuration for the whales command.
type WhalesConfig struct {
	PricesConfig
	Count             int
	HolderConcurrency int
	WhalesOut         string
	Watchlist         string
	UpdateWatchlist   bool
}

var whalesDefaults = map[string]interface{}{
	"count":              10,
	"holder-concurrency": 8,
	"whales-out":         "./data/whales.jsonl",
	"watchlist":          "./data/watchlist.json",
	"update-watchlist":   false,
}

// LoadWhales merges config file, environment variables, and flags into WhalesConfig.
func LoadWhales(cfgFile string, flags *pflag.FlagSet) (WhalesConfig, error) {
	v, err := newViper(cfgFile, flags, mergeDefaults(rpcDefaults, pricesDefaults, whalesDefaults))
	if err != nil {
		return WhalesConfig{}, err
	}

	cfg := WhalesConfig{
		PricesConfig: PricesConfig{
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
		},
		Count:             v.GetInt("count"),
		HolderConcurrency: v.GetInt("holder-concurrency"),
		WhalesOut:         v.GetString("whales-out"),
		Watchlist:         v.GetString("watchlist"),
		UpdateWatchlist:   v.GetBool("update-watchlist"),
	}
	if err := cfg.validate(); err != nil {
		return WhalesConfig{}, err
	}
	if cfg.HolderConcurrency <= 0 {
		return WhalesConfig{}, fmt.Errorf("holder concurrency must be > 0")
	}
	if cfg.UpdateWatchlist && cfg.Watchlist == "" {
		return WhalesConfig{}, fmt.Errorf("watchlist path is required to update it")
	}
	return cfg, nil
}
