package dex

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"whaleScope/internal/model"
)

// OpenBookProgramID is the Serum/OpenBook DEX program that owns open-orders
// accounts of Raydium v4 pools.
var OpenBookProgramID = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")

const (
	openOrdersFlagInitialized uint64 = 1 << 0
	openOrdersFlagOpenOrders  uint64 = 1 << 2
)

// OpenOrdersLayout is the Serum v3 open-orders account (3228 bytes).
var OpenOrdersLayout = Layout{
	Name: "open_orders",
	Fields: []Field{
		padding("head", 5),
		u64("accountFlags"),
		pubkey("market"),
		pubkey("owner"),
		u64("baseTokenFree"),
		u64("baseTokenTotal"),
		u64("quoteTokenFree"),
		u64("quoteTokenTotal"),
		u128("freeSlotBits"),
		u128("isBidBits"),
		padding("orders", 128*16),
		padding("clientIds", 128*8),
		u64("referrerRebatesAccrued"),
		padding("tail", 7),
	},
}

// DecodeOpenOrders decodes the settlement totals of an open-orders account.
func DecodeOpenOrders(data []byte) (model.OpenOrdersTotals, error) {
	rec, err := OpenOrdersLayout.Decode(data)
	if err != nil {
		return model.OpenOrdersTotals{}, err
	}
	flags := rec.Uint64("accountFlags")
	want := openOrdersFlagInitialized | openOrdersFlagOpenOrders
	if flags&want != want {
		return model.OpenOrdersTotals{}, fmt.Errorf("open_orders: unexpected account flags %#x", flags)
	}
	return model.OpenOrdersTotals{
		BaseTotal:  rec.Uint64("baseTokenTotal"),
		QuoteTotal: rec.Uint64("quoteTokenTotal"),
	}, nil
}

// AccountFetcher returns raw accounts in input order; absent accounts are nil.
type AccountFetcher interface {
	FetchAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*model.Account, error)
}

// OpenOrdersReader loads pending-order totals for pools.
type OpenOrdersReader struct {
	fetcher AccountFetcher
	logger  *zap.Logger
}

func NewOpenOrdersReader(fetcher AccountFetcher, logger *zap.Logger) *OpenOrdersReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenOrdersReader{fetcher: fetcher, logger: logger}
}

// Load returns the base/quote totals of an open-orders account. Any failure
// yields zero totals and false.
func (r *OpenOrdersReader) Load(ctx context.Context, openOrders, programID solana.PublicKey) (model.OpenOrdersTotals, bool) {
	totals, err := r.load(ctx, openOrders, programID)
	if err != nil {
		r.logger.Debug("open orders unavailable",
			zap.String("open_orders", openOrders.String()),
			zap.Error(err),
		)
		return model.OpenOrdersTotals{}, false
	}
	return totals, true
}

func (r *OpenOrdersReader) load(ctx context.Context, openOrders, programID solana.PublicKey) (model.OpenOrdersTotals, error) {
	if r.fetcher == nil {
		return model.OpenOrdersTotals{}, fmt.Errorf("account fetcher is nil")
	}
	if openOrders.IsZero() {
		return model.OpenOrdersTotals{}, fmt.Errorf("empty open orders address")
	}
	if programID.IsZero() {
		programID = OpenBookProgramID
	}

	accounts, err := r.fetcher.FetchAccounts(ctx, []solana.PublicKey{openOrders})
	if err != nil {
		return model.OpenOrdersTotals{}, fmt.Errorf("fetch open orders: %w", err)
	}
	if len(accounts) != 1 || accounts[0] == nil {
		return model.OpenOrdersTotals{}, fmt.Errorf("open orders account not found")
	}
	account := accounts[0]
	if !account.Owner.Equals(programID) {
		return model.OpenOrdersTotals{}, fmt.Errorf("open orders owned by %s, want %s", account.Owner, programID)
	}
	return DecodeOpenOrders(account.Data)
}
