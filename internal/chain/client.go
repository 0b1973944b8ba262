package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"whaleScope/internal/model"
)

// ClientConfig configures the Solana RPC client.
type ClientConfig struct {
	Endpoint          string
	Commitment        rpc.CommitmentType
	RequestsPerSecond int
	BatchSize         int
	MaxRetries        int
	RetryBackoff      time.Duration
	MaxRetryBackoff   time.Duration
}

// rpcAPI is the subset of the solana-go client used here.
type rpcAPI interface {
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	GetTokenLargestAccounts(ctx context.Context, tokenMint solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenLargestAccountsResult, error)
}

// Client wraps the solana-go RPC client and provides batched helpers.
type Client struct {
	rpc        rpcAPI
	closer     func() error
	commitment rpc.CommitmentType
	batchSize  int
	retry      retryPolicy
}

// NewClient creates a new chain client from the RPC endpoint.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}

	var rpcClient *rpc.Client
	if cfg.RequestsPerSecond > 0 {
		rpcClient = rpc.NewWithCustomRPCClient(rpc.NewWithRateLimit(cfg.Endpoint, cfg.RequestsPerSecond))
	} else {
		rpcClient = rpc.New(cfg.Endpoint)
	}

	client := newClient(rpcClient, cfg)
	client.closer = rpcClient.Close
	return client, nil
}

func newClient(api rpcAPI, cfg ClientConfig) *Client {
	commitment := cfg.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > MaxAccountsPerCall {
		batchSize = MaxAccountsPerCall
	}
	return &Client{
		rpc:        api,
		commitment: commitment,
		batchSize:  batchSize,
		retry: retryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBackoff,
			MaxDelay:   cfg.MaxRetryBackoff,
		},
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.closer != nil {
		_ = c.closer()
	}
}

// GetMultipleAccounts performs a single getMultipleAccounts call.
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*model.Account, error) {
	var resp *rpc.GetMultipleAccountsResult
	err := withRetry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.GetMultipleAccountsWithOpts(ctx, addresses, &rpc.GetMultipleAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.commitment,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty getMultipleAccounts response")
	}

	accounts := make([]*model.Account, len(resp.Value))
	for i, value := range resp.Value {
		if value == nil {
			continue
		}
		var data []byte
		if value.Data != nil {
			data = value.Data.GetBinary()
		}
		accounts[i] = &model.Account{Owner: value.Owner, Data: data}
	}
	return accounts, nil
}

// FetchAccounts retrieves any number of accounts in batches, preserving order.
func (c *Client) FetchAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*model.Account, error) {
	return FetchBatched(ctx, c, addresses, c.batchSize)
}

// TokenBalance returns the balance of an SPL token account in human units.
func (c *Client) TokenBalance(ctx context.Context, account solana.PublicKey) (decimal.Decimal, error) {
	var resp *rpc.GetTokenAccountBalanceResult
	err := withRetry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	if resp == nil || resp.Value == nil {
		return decimal.Zero, fmt.Errorf("token account %s: empty balance", account)
	}
	return uiAmount(resp.Value)
}

// LargestHolders returns the largest token accounts of a mint.
func (c *Client) LargestHolders(ctx context.Context, mint solana.PublicKey) ([]model.Holder, error) {
	var resp *rpc.GetTokenLargestAccountsResult
	err := withRetry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		resp, err = c.rpc.GetTokenLargestAccounts(ctx, mint, c.commitment)
		return err
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	holders := make([]model.Holder, 0, len(resp.Value))
	for _, value := range resp.Value {
		if value == nil {
			continue
		}
		amount, err := uiAmount(&value.UiTokenAmount)
		if err != nil {
			return nil, fmt.Errorf("holder %s: %w", value.Address, err)
		}
		holders = append(holders, model.Holder{Account: value.Address, Amount: amount})
	}
	return holders, nil
}

func uiAmount(amount *rpc.UiTokenAmount) (decimal.Decimal, error) {
	if amount.UiAmountString != "" {
		return decimal.NewFromString(amount.UiAmountString)
	}
	raw, err := decimal.NewFromString(amount.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse raw amount %q: %w", amount.Amount, err)
	}
	return raw.Shift(-int32(amount.Decimals)), nil
}
