package price

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
)

const defaultMemorySize = 4096

// MemorySource keeps recent positive spot prices in a process-local LRU in
// front of another source. Evicted or expired tokens are fetched again.
type MemorySource struct {
	upstream Source
	store    *expirable.LRU[string, decimal.Decimal]
}

func NewMemorySource(upstream Source, size int, ttl time.Duration) *MemorySource {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MemorySource{
		upstream: upstream,
		store:    expirable.NewLRU[string, decimal.Decimal](size, nil, ttl),
	}
}

func (s *MemorySource) SpotPrice(ctx context.Context, token string) (decimal.Decimal, error) {
	if price, ok := s.store.Get(token); ok {
		return price, nil
	}
	price, err := s.upstream.SpotPrice(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsPositive() {
		s.store.Add(token, price)
	}
	return price, nil
}
