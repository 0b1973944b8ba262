package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whaleScope/internal/config"
	"whaleScope/internal/price"
)

func runPrices(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPrices(cfgFile, cmd.Flags())
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

	p, err := buildPipeline(ctx, cfg, "", logger)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("prices start",
		zap.String("rpc", cfg.RPC.URL),
		zap.Int("pools", len(cfg.Pools)),
		zap.String("registry", cfg.RegistryURL),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	pools, err := p.registry.PoolAddresses(ctx)
	if err != nil {
		return fmt.Errorf("load pool registry: %w", err)
	}

	runAt := time.Now().UTC()
	prices, skipped, err := p.engine.ComputeLpPrices(ctx, pools, price.NewCache())
	if err != nil {
		return err
	}
	logger.Info("prices done", zap.Int("priced", len(prices)), zap.Int("skipped", len(skipped)))

	if err := p.sinks.PutLpPrices(ctx, runAt, prices); err != nil {
		return fmt.Errorf("store lp prices: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), prices)
}
