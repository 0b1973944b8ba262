package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"whaleScope/internal/aggregate"
	"whaleScope/internal/chain"
	"whaleScope/internal/config"
	"whaleScope/internal/dex"
	"whaleScope/internal/price"
	"whaleScope/internal/registry"
	"whaleScope/internal/storage"
	"whaleScope/internal/storage/postgres"
)

// pipeline holds the components shared by the prices and whales commands.
type pipeline struct {
	chain    *chain.Client
	registry aggregate.PoolRegistry
	engine   *aggregate.Engine
	sinks    storage.Multi
	closers  []func()
}

func buildPipeline(ctx context.Context, cfg config.PricesConfig, whalesOut string, logger *zap.Logger) (*pipeline, error) {
	p := &pipeline{}

	chainClient, err := chain.NewClient(chain.ClientConfig{
		Endpoint:          cfg.RPC.URL,
		Commitment:        rpc.CommitmentType(cfg.RPC.Commitment),
		RequestsPerSecond: cfg.RPC.RequestsPerSecond,
		BatchSize:         cfg.RPC.BatchSize,
		MaxRetries:        cfg.RPC.MaxRetries,
		RetryBackoff:      cfg.RPC.RetryBackoff,
		MaxRetryBackoff:   cfg.RPC.MaxRetryBackoff,
	})
	if err != nil {
		return nil, fmt.Errorf("create rpc client: %w", err)
	}
	p.chain = chainClient
	p.closers = append(p.closers, chainClient.Close)

	if len(cfg.Pools) > 0 {
		pools, err := parsePools(cfg.Pools)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.registry = staticPools(pools)
	} else {
		p.registry = registry.NewClient(registry.Config{
			URL:               cfg.RegistryURL,
			IncludeUnofficial: cfg.IncludeUnofficial,
			Timeout:           cfg.HTTPTimeout,
		}, logger)
	}

	var source price.Source = price.NewJupiterSource(cfg.PriceURL, cfg.HTTPTimeout)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		p.closers = append(p.closers, func() { _ = redisClient.Close() })
		source = price.NewRedisSource(redisClient, source, cfg.RedisTTL, logger)
	}
	source = price.NewMemorySource(source, cfg.PriceCacheSize, cfg.PriceCacheTTL)
	resolver := price.NewResolver(source, logger)

	p.engine = aggregate.NewEngine(
		chainClient,
		chainClient,
		dex.NewOpenOrdersReader(chainClient, logger),
		resolver,
		logger,
	)

	p.sinks = storage.Multi{storage.NewJsonlStorage(cfg.Out, whalesOut)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		p.closers = append(p.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			p.Close()
			return nil, err
		}
		p.sinks = append(p.sinks, store)
	}

	return p, nil
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

type staticPools []solana.PublicKey

func (s staticPools) PoolAddresses(context.Context) ([]solana.PublicKey, error) {
	return s, nil
}

func parsePools(values []string) ([]solana.PublicKey, error) {
	pools := make([]solana.PublicKey, 0, len(values))
	for _, value := range values {
		key, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			return nil, fmt.Errorf("invalid pool address %q: %w", value, err)
		}
		pools = append(pools, key)
	}
	return pools, nil
}

func printJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
