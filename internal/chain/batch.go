package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"whaleScope/internal/model"
)

// MaxAccountsPerCall is the getMultipleAccounts ceiling enforced by RPC nodes.
const MaxAccountsPerCall = 100

// Batch is a half-open index range [Start, End) over an address list.
type Batch struct {
	Start int
	End   int
}

// SplitBatches splits n items into consecutive batches of at most size items.
func SplitBatches(n, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("item count must be >= 0")
	}

	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batches = append(batches, Batch{Start: start, End: end})
	}
	return batches, nil
}

// MultipleAccountsGetter performs one getMultipleAccounts call. The result
// must have one entry per address, nil for absent accounts.
type MultipleAccountsGetter interface {
	GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*model.Account, error)
}

// FetchBatched retrieves accounts in sequential calls of at most size
// addresses and returns them in input order.
func FetchBatched(ctx context.Context, getter MultipleAccountsGetter, addresses []solana.PublicKey, size int) ([]*model.Account, error) {
	batches, err := SplitBatches(len(addresses), size)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Account, 0, len(addresses))
	for _, batch := range batches {
		chunk := addresses[batch.Start:batch.End]
		accounts, err := getter.GetMultipleAccounts(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("get accounts [%d,%d): %w", batch.Start, batch.End, err)
		}
		if len(accounts) != len(chunk) {
			return nil, fmt.Errorf("get accounts [%d,%d): got %d results", batch.Start, batch.End, len(accounts))
		}
		out = append(out, accounts...)
	}
	return out, nil
}
