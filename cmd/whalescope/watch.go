package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whaleScope/internal/config"
	"whaleScope/internal/model"
	"whaleScope/internal/portfolio"
	"whaleScope/internal/watch"
)

func runWatchAdd(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := &watch.FileStore{Path: cfg.Watchlist}
	list, _, err := store.Load()
	if err != nil {
		return err
	}
	for _, address := range args {
		added, err := list.AddWallet(address)
		if err != nil {
			return err
		}
		if !added {
			logger.Info("wallet already tracked", zap.String("wallet", address))
		}
	}
	if err := store.Save(list); err != nil {
		return err
	}
	logger.Info("watchlist saved", zap.String("path", cfg.Watchlist), zap.Int("wallets", len(list.Wallets)))
	return nil
}

func runWatchList(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	store := &watch.FileStore{Path: cfg.Watchlist}
	list, _, err := store.Load()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string][]string{
		"whales":       list.Whales,
		"addedWallets": list.AddedWallets,
		"wallets":      list.Wallets,
	})
}

func runHoldings(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHoldings(cfgFile, cmd.Flags())
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

	store := &watch.FileStore{Path: cfg.Watchlist}
	list, found, err := store.Load()
	if err != nil {
		return err
	}
	if !found || len(list.Wallets) == 0 {
		logger.Warn("no tracked wallets", zap.String("path", cfg.Watchlist))
		return nil
	}

	client := portfolio.NewClient(cfg.PortfolioURL, cfg.HTTPTimeout)
	updates, refreshErr := list.RefreshHoldings(ctx, client, logger)

	for _, update := range updates {
		switch {
		case update.Err != nil:
			continue
		case update.First:
			logger.Info("first snapshot", zap.String("wallet", update.Wallet))
		case len(update.Changes) == 0:
			logger.Info("no changes", zap.String("wallet", update.Wallet))
		default:
			for _, change := range update.Changes {
				logger.Info("position change",
					zap.String("wallet", update.Wallet),
					zap.String("kind", change.Kind),
					zap.String("action", change.Action),
					zap.String("asset", change.Asset),
					zap.String("amount", change.Amount.String()),
					zap.String("value", change.Value.String()),
				)
			}
		}
	}

	if err := store.Save(list); err != nil {
		return err
	}
	if refreshErr != nil {
		return refreshErr
	}
	return printJSON(cmd.OutOrStdout(), updatesOutput(updates))
}

type walletChanges struct {
	Wallet  string         `json:"wallet"`
	First   bool           `json:"first,omitempty"`
	Error   string         `json:"error,omitempty"`
	Changes []model.Change `json:"changes"`
}

func updatesOutput(updates []watch.WalletUpdate) []walletChanges {
	out := make([]walletChanges, 0, len(updates))
	for _, update := range updates {
		entry := walletChanges{Wallet: update.Wallet, First: update.First, Changes: update.Changes}
		if update.Err != nil {
			entry.Error = update.Err.Error()
		}
		out = append(out, entry)
	}
	return out
}
