package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whaleScope/internal/aggregate"
	"whaleScope/internal/config"
	"whaleScope/internal/watch"
)

func runWhales(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWhales(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg.PricesConfig, cfg.WhalesOut, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	aggregator := aggregate.NewWhaleAggregator(aggregate.WhaleConfig{
		HolderConcurrency: cfg.HolderConcurrency,
	}, p.registry, p.chain, p.chain, p.engine, logger)

	logger.Info("whales start",
		zap.String("rpc", cfg.RPC.URL),
		zap.Int("count", cfg.Count),
		zap.Int("holder_concurrency", cfg.HolderConcurrency),
		zap.String("whales_out", cfg.WhalesOut),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	report, err := aggregator.Run(ctx, cfg.Count)
	if err != nil {
		return err
	}

	if err := p.sinks.PutLpPrices(ctx, report.RunAt, report.Prices); err != nil {
		return fmt.Errorf("store lp prices: %w", err)
	}
	if err := p.sinks.PutWhales(ctx, report.RunAt, report.Whales); err != nil {
		return fmt.Errorf("store whales: %w", err)
	}

	if cfg.UpdateWatchlist {
		store := &watch.FileStore{Path: cfg.Watchlist}
		list, _, err := store.Load()
		if err != nil {
			return err
		}
		list.SetWhales(report.Whales)
		if err := store.Save(list); err != nil {
			return err
		}
		logger.Info("watchlist updated", zap.String("path", cfg.Watchlist), zap.Int("wallets", len(list.Wallets)))
	}

	return printJSON(cmd.OutOrStdout(), report.Whales)
}
