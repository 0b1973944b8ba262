package aggregate

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"whaleScope/internal/dex"
	"whaleScope/internal/model"
	"whaleScope/internal/price"
)

// AccountFetcher returns raw accounts in input order; absent accounts are nil.
type AccountFetcher interface {
	FetchAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*model.Account, error)
}

// BalanceReader returns the human-unit balance of a token account.
type BalanceReader interface {
	TokenBalance(ctx context.Context, account solana.PublicKey) (decimal.Decimal, error)
}

// OpenOrdersLoader returns pending settlement totals, zero on failure.
type OpenOrdersLoader interface {
	Load(ctx context.Context, openOrders, programID solana.PublicKey) (model.OpenOrdersTotals, bool)
}

// PriceResolver returns a token price, zero when unknown.
type PriceResolver interface {
	Resolve(ctx context.Context, token string, cache *price.Cache) decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Engine values LP tokens from pool reserves.
type Engine struct {
	accounts   AccountFetcher
	balances   BalanceReader
	openOrders OpenOrdersLoader
	prices     PriceResolver
	logger     *zap.Logger
}

func NewEngine(accounts AccountFetcher, balances BalanceReader, openOrders OpenOrdersLoader, prices PriceResolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		accounts:   accounts,
		balances:   balances,
		openOrders: openOrders,
		prices:     prices,
		logger:     logger,
	}
}

// ComputeLpPrices returns the unit price of every pool's LP token that can be
// valued, in pool order, and the reasons the remaining pools were left out.
// Only a failed pool account fetch is returned as an error.
func (e *Engine) ComputeLpPrices(ctx context.Context, pools []solana.PublicKey, cache *price.Cache) ([]model.LpPrice, []model.PoolSkip, error) {
	if e.accounts == nil {
		return nil, nil, fmt.Errorf("account fetcher is nil")
	}
	if cache == nil {
		cache = price.NewCache()
	}

	accounts, err := e.accounts.FetchAccounts(ctx, pools)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch pool accounts: %w", err)
	}
	if len(accounts) != len(pools) {
		return nil, nil, fmt.Errorf("fetch pool accounts: got %d results for %d pools", len(accounts), len(pools))
	}

	var skipped []model.PoolSkip
	skip := func(pool, lpMint solana.PublicKey, reason string, err error) {
		entry := model.PoolSkip{Pool: pool.String(), Reason: reason}
		if !lpMint.IsZero() {
			entry.LpMint = lpMint.String()
		}
		if err != nil {
			entry.Error = err.Error()
		}
		skipped = append(skipped, entry)
		e.logger.Debug("pool skipped",
			zap.String("pool", entry.Pool),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}

	infos := make([]model.LpInfo, 0, len(pools))
	for i, pool := range pools {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if accounts[i] == nil {
			skip(pool, solana.PublicKey{}, model.SkipMissingAccount, nil)
			continue
		}
		state, err := dex.DecodePoolState(pool, accounts[i].Data)
		if err != nil {
			skip(pool, solana.PublicKey{}, model.SkipDecodePool, err)
			continue
		}
		infos = append(infos, e.lpInfo(ctx, state))
	}

	priced := make([]pricedInfo, 0, len(infos))
	for _, info := range infos {
		basePrice := e.resolve(ctx, info.BaseMint, cache)
		if basePrice.IsZero() {
			skip(info.Pool, info.LpMint, model.SkipUnpricedBase, nil)
			continue
		}
		quotePrice := e.resolve(ctx, info.QuoteMint, cache)
		if quotePrice.IsZero() {
			skip(info.Pool, info.LpMint, model.SkipUnpricedQuote, nil)
			continue
		}
		priced = append(priced, pricedInfo{LpInfo: info, basePrice: basePrice, quotePrice: quotePrice})
	}
	if len(priced) == 0 {
		return []model.LpPrice{}, skipped, nil
	}

	mintAddresses := make([]solana.PublicKey, len(priced))
	for i, p := range priced {
		mintAddresses[i] = p.LpMint
	}
	mints, err := e.accounts.FetchAccounts(ctx, mintAddresses)
	if err == nil && len(mints) != len(mintAddresses) {
		err = fmt.Errorf("got %d results for %d mints", len(mints), len(mintAddresses))
	}
	if err != nil {
		e.logger.Warn("fetch lp mints failed", zap.Int("mints", len(mintAddresses)), zap.Error(err))
		for _, p := range priced {
			skip(p.Pool, p.LpMint, model.SkipMissingLpMint, err)
		}
		return []model.LpPrice{}, skipped, nil
	}

	prices := make([]model.LpPrice, 0, len(priced))
	for i, p := range priced {
		if mints[i] == nil {
			skip(p.Pool, p.LpMint, model.SkipMissingLpMint, nil)
			continue
		}
		mint, err := dex.DecodeMint(mints[i].Data)
		if err != nil {
			skip(p.Pool, p.LpMint, model.SkipDecodeLpMint, err)
			continue
		}
		circulating := toUnits(mint.Supply, mint.Decimals)
		if circulating.LessThan(one) {
			skip(p.Pool, p.LpMint, model.SkipLowSupply, nil)
			continue
		}

		value := p.BaseAmount.Mul(p.basePrice).Add(p.QuoteAmount.Mul(p.quotePrice))
		prices = append(prices, model.LpPrice{
			Pool:      p.Pool.String(),
			LpMint:    p.LpMint.String(),
			BaseMint:  p.BaseMint.String(),
			QuoteMint: p.QuoteMint.String(),
			Price:     value.Div(circulating),
		})
	}

	e.logger.Info("lp prices computed",
		zap.Int("pools", len(pools)),
		zap.Int("priced", len(prices)),
		zap.Int("skipped", len(skipped)),
	)
	return prices, skipped, nil
}

type pricedInfo struct {
	model.LpInfo
	basePrice  decimal.Decimal
	quotePrice decimal.Decimal
}

// lpInfo computes the pooled base and quote amounts of a decoded pool:
// vault balance plus open-order totals minus pending PnL.
func (e *Engine) lpInfo(ctx context.Context, state model.PoolState) model.LpInfo {
	var totals model.OpenOrdersTotals
	if e.openOrders != nil {
		totals, _ = e.openOrders.Load(ctx, state.OpenOrders, state.MarketProgramID)
	}

	baseVault := e.vaultBalance(ctx, state.Address, state.BaseVault)
	quoteVault := e.vaultBalance(ctx, state.Address, state.QuoteVault)

	base := baseVault.
		Add(toUnits(totals.BaseTotal, state.BaseDecimals)).
		Sub(toUnits(state.BaseNeedTakePnl, state.BaseDecimals))
	quote := quoteVault.
		Add(toUnits(totals.QuoteTotal, state.QuoteDecimals)).
		Sub(toUnits(state.QuoteNeedTakePnl, state.QuoteDecimals))

	if base.IsNegative() || quote.IsNegative() {
		e.logger.Warn("negative pool reserves",
			zap.String("pool", state.Address.String()),
			zap.String("base", base.String()),
			zap.String("quote", quote.String()),
		)
	}

	return model.LpInfo{
		Pool:        state.Address,
		LpMint:      state.LpMint,
		BaseAmount:  base,
		BaseMint:    state.BaseMint,
		QuoteAmount: quote,
		QuoteMint:   state.QuoteMint,
	}
}

func (e *Engine) vaultBalance(ctx context.Context, pool, vault solana.PublicKey) decimal.Decimal {
	if e.balances == nil {
		return decimal.Zero
	}
	balance, err := e.balances.TokenBalance(ctx, vault)
	if err != nil {
		e.logger.Debug("vault balance unavailable",
			zap.String("pool", pool.String()),
			zap.String("vault", vault.String()),
			zap.Error(err),
		)
		return decimal.Zero
	}
	return balance
}

func (e *Engine) resolve(ctx context.Context, mint solana.PublicKey, cache *price.Cache) decimal.Decimal {
	if e.prices == nil {
		return decimal.Zero
	}
	return e.prices.Resolve(ctx, mint.String(), cache)
}
