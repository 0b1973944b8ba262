package price

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source returns the USD spot price of a token mint.
type Source interface {
	SpotPrice(ctx context.Context, token string) (decimal.Decimal, error)
}

// Resolver looks up prices through a Source, memoized per run.
type Resolver struct {
	source Source
	logger *zap.Logger
}

func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve returns the price of token, or zero when it is unknown. Source
// failures are logged and cached as zero for the rest of the run.
func (r *Resolver) Resolve(ctx context.Context, token string, cache *Cache) decimal.Decimal {
	lookup := func() decimal.Decimal {
		if r.source == nil {
			return decimal.Zero
		}
		price, err := r.source.SpotPrice(ctx, token)
		if err != nil {
			r.logger.Warn("price lookup failed", zap.String("token", token), zap.Error(err))
			return decimal.Zero
		}
		if price.IsNegative() {
			r.logger.Warn("negative price ignored", zap.String("token", token), zap.String("price", price.String()))
			return decimal.Zero
		}
		return price
	}
	if cache == nil {
		return lookup()
	}
	return cache.load(token, lookup)
}
