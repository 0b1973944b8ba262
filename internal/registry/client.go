package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// DefaultURL is the Raydium liquidity pool list.
const DefaultURL = "https://api.raydium.io/v2/sdk/liquidity/mainnet.json"

// Client reads Raydium v4 pool addresses from the liquidity list.
type Client struct {
	url               string
	includeUnofficial bool
	httpClient        *http.Client
	logger            *zap.Logger
}

type Config struct {
	URL               string
	IncludeUnofficial bool
	Timeout           time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:               cfg.URL,
		includeUnofficial: cfg.IncludeUnofficial,
		httpClient:        &http.Client{Timeout: cfg.Timeout},
		logger:            logger,
	}
}

type poolEntry struct {
	ID string `json:"id"`
}

type liquidityList struct {
	Official   []poolEntry `json:"official"`
	UnOfficial []poolEntry `json:"unOfficial"`
}

// PoolAddresses returns pool account addresses in list order, without
// duplicates. Invalid ids are skipped.
func (c *Client) PoolAddresses(ctx context.Context) ([]solana.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pool registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pool registry status %d: %s", resp.StatusCode, body)
	}

	var list liquidityList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode pool registry: %w", err)
	}

	entries := list.Official
	if c.includeUnofficial {
		entries = append(entries, list.UnOfficial...)
	}

	seen := make(map[solana.PublicKey]struct{}, len(entries))
	out := make([]solana.PublicKey, 0, len(entries))
	for _, entry := range entries {
		address, err := solana.PublicKeyFromBase58(entry.ID)
		if err != nil {
			c.logger.Warn("invalid pool id", zap.String("id", entry.ID), zap.Error(err))
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		out = append(out, address)
	}

	c.logger.Info("pool registry loaded",
		zap.Int("official", len(list.Official)),
		zap.Int("unofficial", len(list.UnOfficial)),
		zap.Int("pools", len(out)),
	)
	return out, nil
}
