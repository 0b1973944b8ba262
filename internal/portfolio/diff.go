package portfolio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"whaleScope/internal/model"
)

type tokenPosition struct {
	amount decimal.Decimal
	price  decimal.Decimal
	held   bool
}

// Diff reports token and LP position changes from prev to cur. Token changes
// are valued at the current price, or the previous one when the token was
// sold out. LP positions are matched by their constituent mints.
func Diff(prev, cur model.Portfolio) []model.Change {
	changes := diffTokens(tokenPositions(prev), tokenPositions(cur))
	changes = append(changes, diffLiquidity(lpValues(prev), lpValues(cur))...)
	return changes
}

func diffTokens(prev, cur map[string]tokenPosition) []model.Change {
	addresses := unionKeys(prev, cur)
	changes := make([]model.Change, 0)
	for _, address := range addresses {
		before := prev[address]
		after := cur[address]
		delta := after.amount.Sub(before.amount)
		if delta.IsZero() {
			continue
		}
		unitPrice := after.price
		if !after.held {
			unitPrice = before.price
		}
		amount := delta.Abs()
		changes = append(changes, model.Change{
			Kind:   model.ChangeToken,
			Action: action(delta),
			Asset:  address,
			Amount: amount,
			Value:  amount.Mul(unitPrice),
		})
	}
	return changes
}

func diffLiquidity(prev, cur map[string]decimal.Decimal) []model.Change {
	pairs := unionKeys(prev, cur)
	changes := make([]model.Change, 0)
	for _, pair := range pairs {
		delta := cur[pair].Sub(prev[pair])
		if delta.IsZero() {
			continue
		}
		changes = append(changes, model.Change{
			Kind:   model.ChangeLp,
			Action: action(delta),
			Asset:  pair,
			Value:  delta.Abs(),
		})
	}
	return changes
}

func action(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return model.ActionSold
	}
	return model.ActionBought
}

// tokenPositions sums plain token assets across all elements by mint.
func tokenPositions(p model.Portfolio) map[string]tokenPosition {
	out := make(map[string]tokenPosition)
	for _, element := range p.Elements {
		for _, asset := range element.Data.Assets {
			address := asset.Data.Address
			if address == "" {
				continue
			}
			pos := out[address]
			pos.amount = pos.amount.Add(asset.Data.Amount)
			if !asset.Data.Price.IsZero() {
				pos.price = asset.Data.Price
			}
			pos.held = true
			out[address] = pos
		}
	}
	return out
}

// lpValues sums liquidity position values by constituent mint pair.
func lpValues(p model.Portfolio) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, element := range p.Elements {
		for _, liquidity := range element.Data.Liquidities {
			key := pairKey(liquidity.Assets)
			if key == "" {
				continue
			}
			out[key] = out[key].Add(liquidity.Value)
		}
	}
	return out
}

func pairKey(assets []model.PortfolioAsset) string {
	mints := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset.Data.Address != "" {
			mints = append(mints, asset.Data.Address)
		}
	}
	sort.Strings(mints)
	return strings.Join(mints, "/")
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
