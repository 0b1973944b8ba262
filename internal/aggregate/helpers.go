package aggregate

import (
	"math/big"
	"sort"

	"github.com/shopspring/decimal"

	"whaleScope/internal/model"
)

// toUnits converts a raw integer token amount to human units.
func toUnits(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// PriceMap indexes LP prices by LP mint address.
func PriceMap(prices []model.LpPrice) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(prices))
	for _, p := range prices {
		out[p.LpMint] = p.Price
	}
	return out
}

// rankWhales orders wallets by value descending, ties by address ascending,
// and keeps at most limit entries.
func rankWhales(worth map[string]decimal.Decimal, limit int) []model.Whale {
	if limit <= 0 {
		return []model.Whale{}
	}
	whales := make([]model.Whale, 0, len(worth))
	for address, value := range worth {
		whales = append(whales, model.Whale{Address: address, LpValue: value})
	}
	sort.Slice(whales, func(i, j int) bool {
		if cmp := whales[i].LpValue.Cmp(whales[j].LpValue); cmp != 0 {
			return cmp > 0
		}
		return whales[i].Address < whales[j].Address
	})
	if len(whales) > limit {
		whales = whales[:limit]
	}
	return whales
}
