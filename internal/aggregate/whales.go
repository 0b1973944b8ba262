package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"whaleScope/internal/dex"
	"whaleScope/internal/model"
	"whaleScope/internal/price"
)

const defaultHolderConcurrency = 8

// PoolRegistry lists the pool accounts to evaluate.
type PoolRegistry interface {
	PoolAddresses(ctx context.Context) ([]solana.PublicKey, error)
}

// HolderFetcher returns the largest token accounts of a mint.
type HolderFetcher interface {
	LargestHolders(ctx context.Context, mint solana.PublicKey) ([]model.Holder, error)
}

// WhaleConfig controls whale aggregation.
type WhaleConfig struct {
	HolderConcurrency int
}

// Report is the outcome of one whale aggregation run.
type Report struct {
	RunAt   time.Time
	Prices  []model.LpPrice
	Skipped []model.PoolSkip
	Whales  []model.Whale
}

// WhaleAggregator ranks wallets by the value of their LP holdings.
type WhaleAggregator struct {
	cfg      WhaleConfig
	registry PoolRegistry
	holders  HolderFetcher
	accounts AccountFetcher
	engine   *Engine
	logger   *zap.Logger
	now      func() time.Time
}

func NewWhaleAggregator(cfg WhaleConfig, registry PoolRegistry, holders HolderFetcher, accounts AccountFetcher, engine *Engine, logger *zap.Logger) *WhaleAggregator {
	if cfg.HolderConcurrency <= 0 {
		cfg.HolderConcurrency = defaultHolderConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhaleAggregator{
		cfg:      cfg,
		registry: registry,
		holders:  holders,
		accounts: accounts,
		engine:   engine,
		logger:   logger,
		now:      time.Now,
	}
}

// FindTopWhales returns at most count wallets ordered by LP value.
func (w *WhaleAggregator) FindTopWhales(ctx context.Context, count int) ([]model.Whale, error) {
	if count <= 0 {
		return []model.Whale{}, nil
	}
	report, err := w.Run(ctx, count)
	if err != nil {
		return nil, err
	}
	return report.Whales, nil
}

// Run executes the full pipeline and keeps the intermediate LP prices.
func (w *WhaleAggregator) Run(ctx context.Context, count int) (Report, error) {
	if w.registry == nil {
		return Report{}, fmt.Errorf("pool registry is nil")
	}
	if w.engine == nil {
		return Report{}, fmt.Errorf("lp engine is nil")
	}
	if w.accounts == nil {
		return Report{}, fmt.Errorf("account fetcher is nil")
	}

	report := Report{RunAt: w.now().UTC()}

	pools, err := w.registry.PoolAddresses(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load pool registry: %w", err)
	}

	cache := price.NewCache()
	prices, skipped, err := w.engine.ComputeLpPrices(ctx, pools, cache)
	if err != nil {
		return Report{}, err
	}
	report.Prices = prices
	report.Skipped = skipped

	holdersByMint, err := w.fetchHolders(ctx, prices)
	if err != nil {
		return Report{}, err
	}

	accountWorth, order := accumulateHoldings(prices, holdersByMint)

	walletWorth, err := w.resolveOwners(ctx, accountWorth, order)
	if err != nil {
		return Report{}, err
	}

	report.Whales = rankWhales(walletWorth, count)
	w.logger.Info("whales ranked",
		zap.Int("pools", len(pools)),
		zap.Int("lp_prices", len(prices)),
		zap.Int("token_accounts", len(order)),
		zap.Int("wallets", len(walletWorth)),
		zap.Int("returned", len(report.Whales)),
	)
	return report, nil
}

// fetchHolders queries the largest holders of every priced LP mint
// concurrently. A failed query yields an empty list for that mint.
func (w *WhaleAggregator) fetchHolders(ctx context.Context, prices []model.LpPrice) (map[string][]model.Holder, error) {
	mints := make([]string, 0, len(prices))
	seen := make(map[string]struct{}, len(prices))
	for _, p := range prices {
		if _, ok := seen[p.LpMint]; ok {
			continue
		}
		seen[p.LpMint] = struct{}{}
		mints = append(mints, p.LpMint)
	}

	results := make([][]model.Holder, len(mints))
	if w.holders != nil {
		var group errgroup.Group
		group.SetLimit(w.cfg.HolderConcurrency)
		for i, mint := range mints {
			i, mint := i, mint
			group.Go(func() error {
				key, err := solana.PublicKeyFromBase58(mint)
				if err != nil {
					w.logger.Warn("invalid lp mint", zap.String("mint", mint), zap.Error(err))
					return nil
				}
				holders, err := w.holders.LargestHolders(ctx, key)
				if err != nil {
					w.logger.Warn("largest holders failed", zap.String("mint", mint), zap.Error(err))
					return nil
				}
				results[i] = holders
				return nil
			})
		}
		_ = group.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.Holder, len(mints))
	for i, mint := range mints {
		out[mint] = results[i]
	}
	return out, nil
}

// accumulateHoldings values every holder token account at its LP price.
// It returns the per-account worth and the accounts in first-seen order.
func accumulateHoldings(prices []model.LpPrice, holdersByMint map[string][]model.Holder) (map[solana.PublicKey]decimal.Decimal, []solana.PublicKey) {
	priceByMint := PriceMap(prices)
	worth := make(map[solana.PublicKey]decimal.Decimal)
	order := make([]solana.PublicKey, 0)
	done := make(map[string]struct{}, len(holdersByMint))
	for _, p := range prices {
		holders, ok := holdersByMint[p.LpMint]
		if !ok {
			continue
		}
		if _, ok := done[p.LpMint]; ok {
			continue
		}
		done[p.LpMint] = struct{}{}
		lpPrice := priceByMint[p.LpMint]
		for _, holder := range holders {
			current, seen := worth[holder.Account]
			if !seen {
				order = append(order, holder.Account)
			}
			worth[holder.Account] = current.Add(holder.Amount.Mul(lpPrice))
		}
	}
	return worth, order
}

// resolveOwners maps token accounts to their owner wallets and sums worth per
// wallet. Accounts that are missing or do not decode are skipped.
func (w *WhaleAggregator) resolveOwners(ctx context.Context, accountWorth map[solana.PublicKey]decimal.Decimal, order []solana.PublicKey) (map[string]decimal.Decimal, error) {
	walletWorth := make(map[string]decimal.Decimal)
	if len(order) == 0 {
		return walletWorth, nil
	}

	accounts, err := w.accounts.FetchAccounts(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("fetch holder accounts: %w", err)
	}
	if len(accounts) != len(order) {
		return nil, fmt.Errorf("fetch holder accounts: got %d results for %d accounts", len(accounts), len(order))
	}

	var missing, undecodable int
	for i, address := range order {
		if accounts[i] == nil {
			missing++
			continue
		}
		tokenAccount, err := dex.DecodeTokenAccount(accounts[i].Data)
		if err != nil {
			undecodable++
			w.logger.Debug("holder account undecodable", zap.String("account", address.String()), zap.Error(err))
			continue
		}
		owner := tokenAccount.Owner.String()
		walletWorth[owner] = walletWorth[owner].Add(accountWorth[address])
	}
	if missing > 0 || undecodable > 0 {
		w.logger.Warn("holder accounts skipped",
			zap.Int("missing", missing),
			zap.Int("undecodable", undecodable),
		)
	}
	return walletWorth, nil
}
