package watch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"whaleScope/internal/model"
	"whaleScope/internal/portfolio"
)

// Watchlist is the persisted set of tracked wallets and their last
// portfolio snapshots.
type Watchlist struct {
	Whales        []string                   `json:"whales"`
	AddedWallets  []string                   `json:"addedWallets"`
	Wallets       []string                   `json:"wallets"`
	TokenHoldings map[string]model.Portfolio `json:"tokenHoldings"`
	UpdatedAt     string                     `json:"updated_at,omitempty"`
}

func New() *Watchlist {
	return &Watchlist{
		Whales:        []string{},
		AddedWallets:  []string{},
		Wallets:       []string{},
		TokenHoldings: make(map[string]model.Portfolio),
	}
}

// SetWhales replaces the whale set with the given ranking.
func (w *Watchlist) SetWhales(whales []model.Whale) {
	w.Whales = make([]string, 0, len(whales))
	for _, whale := range whales {
		w.Whales = append(w.Whales, whale.Address)
	}
	w.refreshWallets()
}

// AddWallet adds a manually tracked wallet. It reports false when the wallet
// was already added.
func (w *Watchlist) AddWallet(address string) (bool, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return false, fmt.Errorf("invalid wallet address %q: %w", address, err)
	}
	address = key.String()
	for _, existing := range w.AddedWallets {
		if existing == address {
			return false, nil
		}
	}
	w.AddedWallets = append(w.AddedWallets, address)
	w.refreshWallets()
	return true, nil
}

// refreshWallets rebuilds Wallets as whales followed by added wallets,
// without duplicates, and drops snapshots of wallets no longer tracked.
func (w *Watchlist) refreshWallets() {
	seen := make(map[string]struct{}, len(w.Whales)+len(w.AddedWallets))
	wallets := make([]string, 0, len(w.Whales)+len(w.AddedWallets))
	for _, group := range [][]string{w.Whales, w.AddedWallets} {
		for _, address := range group {
			if _, ok := seen[address]; ok {
				continue
			}
			seen[address] = struct{}{}
			wallets = append(wallets, address)
		}
	}
	w.Wallets = wallets

	for address := range w.TokenHoldings {
		if _, ok := seen[address]; !ok {
			delete(w.TokenHoldings, address)
		}
	}
}

// PortfolioFetcher returns a wallet's current portfolio.
type PortfolioFetcher interface {
	Fetch(ctx context.Context, owner string) (model.Portfolio, error)
}

// WalletUpdate is the refresh result of one tracked wallet.
type WalletUpdate struct {
	Wallet string
	// First is set when no earlier snapshot existed.
	First   bool
	Changes []model.Change
	Err     error
}

// RefreshHoldings fetches a new snapshot for every tracked wallet and diffs it
// against the stored one. A wallet whose fetch fails keeps its old snapshot.
func (w *Watchlist) RefreshHoldings(ctx context.Context, fetcher PortfolioFetcher, logger *zap.Logger) ([]WalletUpdate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if w.TokenHoldings == nil {
		w.TokenHoldings = make(map[string]model.Portfolio)
	}

	updates := make([]WalletUpdate, 0, len(w.Wallets))
	for _, wallet := range w.Wallets {
		if err := ctx.Err(); err != nil {
			return updates, err
		}
		current, err := fetcher.Fetch(ctx, wallet)
		if err != nil {
			logger.Warn("portfolio fetch failed", zap.String("wallet", wallet), zap.Error(err))
			updates = append(updates, WalletUpdate{Wallet: wallet, Err: err})
			continue
		}

		update := WalletUpdate{Wallet: wallet}
		if previous, ok := w.TokenHoldings[wallet]; ok {
			update.Changes = portfolio.Diff(previous, current)
		} else {
			update.First = true
		}
		w.TokenHoldings[wallet] = current
		updates = append(updates, update)
	}
	return updates, nil
}
