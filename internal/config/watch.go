package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// WatchConfig holds configuration for the watch commands.
type WatchConfig struct {
	Watchlist string
	LogLevel  string
}

// HoldingsConfig holds configuration for the holdings command.
type HoldingsConfig struct {
	Watchlist    string
	PortfolioURL string
	HTTPTimeout  time.Duration
	LogLevel     string
}

var watchDefaults = map[string]interface{}{
	"watchlist": "./data/watchlist.json",
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := newViper(cfgFile, flags, watchDefaults)
	if err != nil {
		return WatchConfig{}, err
	}
	cfg := WatchConfig{
		Watchlist: v.GetString("watchlist"),
		LogLevel:  v.GetString("log-level"),
	}
	if cfg.Watchlist == "" {
		return WatchConfig{}, fmt.Errorf("watchlist path is required")
	}
	return cfg, nil
}

// LoadHoldings merges config file, environment variables, and flags into HoldingsConfig.
func LoadHoldings(cfgFile string, flags *pflag.FlagSet) (HoldingsConfig, error) {
	v, err := newViper(cfgFile, flags, mergeDefaults(watchDefaults, map[string]interface{}{
		"portfolio-url": "https://portfolio-api.sonar.watch/v1/portfolio/fetch",
		"http-timeout":  60 * time.Second,
	}))
	if err != nil {
		return HoldingsConfig{}, err
	}
	cfg := HoldingsConfig{
		Watchlist:    v.GetString("watchlist"),
		PortfolioURL: v.GetString("portfolio-url"),
		HTTPTimeout:  v.GetDuration("http-timeout"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.Watchlist == "" {
		return HoldingsConfig{}, fmt.Errorf("watchlist path is required")
	}
	return cfg, nil
}
