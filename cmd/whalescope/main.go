package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"whaleScope/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "whalescope",
		Short:        "Raydium LP valuation and whale tracker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return config.LoadDotEnv(envFile)
		},
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before configuration")

	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Compute LP token prices for Raydium v4 pools",
		RunE:  runPrices,
	}
	addChainFlags(pricesCmd)
	pricesCmd.Flags().String("out", "./data/lp_prices.jsonl", "output LP prices JSONL (empty disables)")
	root.AddCommand(pricesCmd)

	whalesCmd := &cobra.Command{
		Use:   "whales",
		Short: "Rank wallets by the value of their Raydium LP holdings",
		RunE:  runWhales,
	}
	addChainFlags(whalesCmd)
	whalesCmd.Flags().String("out", "./data/lp_prices.jsonl", "output LP prices JSONL (empty disables)")
	whalesCmd.Flags().Int("count", 10, "number of wallets to return")
	whalesCmd.Flags().Int("holder-concurrency", 8, "concurrent largest-holder queries")
	whalesCmd.Flags().String("whales-out", "./data/whales.jsonl", "output whale rankings JSONL (empty disables)")
	whalesCmd.Flags().String("watchlist", "./data/watchlist.json", "watchlist file path")
	whalesCmd.Flags().Bool("update-watchlist", false, "replace the watchlist whales with this ranking")
	root.AddCommand(whalesCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage tracked wallets",
	}
	watchCmd.PersistentFlags().String("watchlist", "./data/watchlist.json", "watchlist file path")
	watchCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	watchAddCmd := &cobra.Command{
		Use:   "add <wallet>...",
		Short: "Add wallets to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWatchAdd,
	}
	watchListCmd := &cobra.Command{
		Use:   "list",
		Short: "Print tracked wallets",
		Args:  cobra.NoArgs,
		RunE:  runWatchList,
	}
	watchCmd.AddCommand(watchAddCmd, watchListCmd)
	root.AddCommand(watchCmd)

	holdingsCmd := &cobra.Command{
		Use:   "holdings",
		Short: "Snapshot tracked wallets and report position changes",
		RunE:  runHoldings,
	}
	holdingsCmd.Flags().String("watchlist", "./data/watchlist.json", "watchlist file path")
	holdingsCmd.Flags().String("portfolio-url", "https://portfolio-api.sonar.watch/v1/portfolio/fetch", "portfolio snapshot endpoint")
	holdingsCmd.Flags().Duration("http-timeout", 60*time.Second, "HTTP request timeout")
	holdingsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(holdingsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	cmd.Flags().String("commitment", "confirmed", "RPC commitment (processed, confirmed, finalized)")
	cmd.Flags().Int("rps", 0, "RPC requests per second, 0 means unlimited")
	cmd.Flags().Int("batch-size", 100, "accounts per getMultipleAccounts call (max 100)")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per RPC call")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Duration("max-retry-backoff", 10*time.Second, "maximum retry backoff")
	cmd.Flags().StringSlice("pool", nil, "pool addresses (comma-separated), overrides the registry")
	cmd.Flags().String("registry-url", "https://api.raydium.io/v2/sdk/liquidity/mainnet.json", "Raydium liquidity list URL")
	cmd.Flags().Bool("include-unofficial", false, "include unofficial pools from the registry")
	cmd.Flags().String("price-url", "https://price.jup.ag/v4/price?ids=", "spot price endpoint, token mint is appended")
	cmd.Flags().String("redis-addr", "", "optional Redis address for shared spot prices")
	cmd.Flags().Duration("redis-ttl", time.Minute, "Redis spot price TTL")
	cmd.Flags().Int("price-cache-size", 4096, "process-local spot price cache capacity")
	cmd.Flags().Duration("price-cache-ttl", time.Minute, "process-local spot price TTL")
	cmd.Flags().Duration("http-timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
