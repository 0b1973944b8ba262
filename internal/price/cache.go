package price

import (
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes token prices for one run. It never evicts: every token is
// resolved at most once per run, and a cached zero means the token has no
// known price and is not queried again.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
	group  singleflight.Group
}

func NewCache() *Cache {
	return &Cache{prices: make(map[string]decimal.Decimal)}
}

func (c *Cache) Get(token string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.prices[token]
	return price, ok
}

func (c *Cache) Add(token string, price decimal.Decimal) {
	c.mu.Lock()
	c.prices[token] = price
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}

// load returns the cached price or runs fn once across concurrent callers
// and stores its result.
func (c *Cache) load(token string, fn func() decimal.Decimal) decimal.Decimal {
	if price, ok := c.Get(token); ok {
		return price
	}
	value, _, _ := c.group.Do(token, func() (interface{}, error) {
		if price, ok := c.Get(token); ok {
			return price, nil
		}
		price := fn()
		c.Add(token, price)
		return price, nil
	})
	return value.(decimal.Decimal)
}
