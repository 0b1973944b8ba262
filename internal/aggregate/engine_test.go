package aggregate

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"whaleScope/internal/dex"
	"whaleScope/internal/model"
	"whaleScope/internal/price"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*model.Account
	calls    [][]solana.PublicKey
	err      error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[solana.PublicKey]*model.Account)}
}

func (f *fakeAccounts) FetchAccounts(_ context.Context, addresses []solana.PublicKey) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, addresses)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Account, len(addresses))
	for i, address := range addresses {
		out[i] = f.accounts[address]
	}
	return out, nil
}

type fakeBalances map[solana.PublicKey]decimal.Decimal

func (f fakeBalances) TokenBalance(_ context.Context, account solana.PublicKey) (decimal.Decimal, error) {
	balance, ok := f[account]
	if !ok {
		return decimal.Zero, errors.New("account not found")
	}
	return balance, nil
}

type fakeOpenOrders map[solana.PublicKey]model.OpenOrdersTotals

func (f fakeOpenOrders) Load(_ context.Context, openOrders, _ solana.PublicKey) (model.OpenOrdersTotals, bool) {
	totals, ok := f[openOrders]
	return totals, ok
}

type fakeSource struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  map[string]int
}

func newFakeSource(prices map[solana.PublicKey]string) *fakeSource {
	src := &fakeSource{prices: make(map[string]decimal.Decimal), calls: make(map[string]int)}
	for mint, p := range prices {
		src.prices[mint.String()] = decimal.RequireFromString(p)
	}
	return src
}

func (s *fakeSource) SpotPrice(_ context.Context, token string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[token]++
	p, ok := s.prices[token]
	if !ok {
		return decimal.Zero, errors.New("unknown token")
	}
	return p, nil
}

type poolFixture struct {
	address       solana.PublicKey
	baseMint      solana.PublicKey
	quoteMint     solana.PublicKey
	lpMint        solana.PublicKey
	baseVault     solana.PublicKey
	quoteVault    solana.PublicKey
	openOrders    solana.PublicKey
	baseDecimals  uint64
	quoteDecimals uint64
	basePnl       uint64
	quotePnl      uint64
}

func newPoolFixture(seed byte) poolFixture {
	return poolFixture{
		address:       key(seed, 0),
		baseMint:      key(seed, 1),
		quoteMint:     key(seed, 2),
		lpMint:        key(seed, 3),
		baseVault:     key(seed, 4),
		quoteVault:    key(seed, 5),
		openOrders:    key(seed, 6),
		baseDecimals:  6,
		quoteDecimals: 6,
	}
}

func (p poolFixture) encode() []byte {
	data := make([]byte, dex.AmmV4Layout.Span())
	putU64(data, dex.AmmV4Layout, "baseDecimal", p.baseDecimals)
	putU64(data, dex.AmmV4Layout, "quoteDecimal", p.quoteDecimals)
	putU64(data, dex.AmmV4Layout, "baseNeedTakePnl", p.basePnl)
	putU64(data, dex.AmmV4Layout, "quoteNeedTakePnl", p.quotePnl)
	putKey(data, dex.AmmV4Layout, "baseVault", p.baseVault)
	putKey(data, dex.AmmV4Layout, "quoteVault", p.quoteVault)
	putKey(data, dex.AmmV4Layout, "baseMint", p.baseMint)
	putKey(data, dex.AmmV4Layout, "quoteMint", p.quoteMint)
	putKey(data, dex.AmmV4Layout, "lpMint", p.lpMint)
	putKey(data, dex.AmmV4Layout, "openOrders", p.openOrders)
	putKey(data, dex.AmmV4Layout, "marketProgramId", dex.OpenBookProgramID)
	return data
}

func mintData(supply uint64, decimals uint8) []byte {
	data := make([]byte, dex.MintLayout.Span())
	putU64(data, dex.MintLayout, "supply", supply)
	offset, _ := dex.MintLayout.Offset("decimals")
	data[offset] = decimals
	offset, _ = dex.MintLayout.Offset("initialized")
	data[offset] = 1
	return data
}

func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, dex.TokenAccountLayout.Span())
	putKey(data, dex.TokenAccountLayout, "mint", mint)
	putKey(data, dex.TokenAccountLayout, "owner", owner)
	putU64(data, dex.TokenAccountLayout, "amount", amount)
	offset, _ := dex.TokenAccountLayout.Offset("state")
	data[offset] = byte(model.AccountStateInitialized)
	return data
}

func putU64(data []byte, layout dex.Layout, name string, value uint64) {
	offset, ok := layout.Offset(name)
	if !ok {
		panic("unknown field " + name)
	}
	binary.LittleEndian.PutUint64(data[offset:], value)
}

func putKey(data []byte, layout dex.Layout, name string, value solana.PublicKey) {
	offset, ok := layout.Offset(name)
	if !ok {
		panic("unknown field " + name)
	}
	copy(data[offset:], value[:])
}

func key(seed, index byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = seed
	k[1] = index
	k[31] = 0xAA
	return k
}

type engineFixture struct {
	accounts   *fakeAccounts
	balances   fakeBalances
	openOrders fakeOpenOrders
	source     *fakeSource
}

func newEngineFixture() *engineFixture {
	return &engineFixture{
		accounts:   newFakeAccounts(),
		balances:   fakeBalances{},
		openOrders: fakeOpenOrders{},
		source:     newFakeSource(nil),
	}
}

func (f *engineFixture) addPool(p poolFixture, baseVault, quoteVault string, lpSupply uint64, lpDecimals uint8) {
	f.accounts.accounts[p.address] = &model.Account{Owner: key(0xEE, 0), Data: p.encode()}
	f.accounts.accounts[p.lpMint] = &model.Account{Data: mintData(lpSupply, lpDecimals)}
	f.balances[p.baseVault] = decimal.RequireFromString(baseVault)
	f.balances[p.quoteVault] = decimal.RequireFromString(quoteVault)
}

func (f *engineFixture) setPrice(mint solana.PublicKey, value string) {
	f.source.prices[mint.String()] = decimal.RequireFromString(value)
}

func (f *engineFixture) engine() *Engine {
	resolver := price.NewResolver(f.source, zap.NewNop())
	return NewEngine(f.accounts, f.balances, f.openOrders, resolver, zap.NewNop())
}

func TestComputeLpPricesBasic(t *testing.T) {
	f := newEngineFixture()
	pool := newPoolFixture(1)
	f.addPool(pool, "100", "300", 100, 0)
	f.setPrice(pool.baseMint, "2")
	f.setPrice(pool.quoteMint, "1")

	prices, skipped, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{pool.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(prices) != 1 {
		t.Fatalf("expected 1 price, got %d", len(prices))
	}
	if !prices[0].Price.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected price 5, got %s", prices[0].Price)
	}
	if prices[0].LpMint != pool.lpMint.String() || prices[0].Pool != pool.address.String() {
		t.Fatalf("unexpected identifiers: %+v", prices[0])
	}
}

func TestComputeLpPricesPendingAdjustments(t *testing.T) {
	f := newEngineFixture()
	pool := newPoolFixture(1)
	pool.basePnl = 1_000_000
	pool.quotePnl = 0
	f.addPool(pool, "10", "20", 2, 0)
	f.openOrders[pool.openOrders] = model.OpenOrdersTotals{BaseTotal: 5_000_000, QuoteTotal: 0}
	f.setPrice(pool.baseMint, "1")
	f.setPrice(pool.quoteMint, "1")

	prices, _, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{pool.address}, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("expected 1 price, got %d", len(prices))
	}
	// base = 10 + 5 - 1 = 14, quote = 20, total 34 over supply 2
	if !prices[0].Price.Equal(decimal.NewFromInt(17)) {
		t.Fatalf("expected price 17, got %s", prices[0].Price)
	}
}

func TestComputeLpPricesSupplyThreshold(t *testing.T) {
	f := newEngineFixture()
	below := newPoolFixture(1)
	exact := newPoolFixture(2)
	f.addPool(below, "1", "1", 999_999, 6)
	f.addPool(exact, "1", "1", 1_000_000, 6)
	for _, p := range []poolFixture{below, exact} {
		f.setPrice(p.baseMint, "1")
		f.setPrice(p.quoteMint, "1")
	}

	prices, skipped, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{below.address, exact.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 1 || prices[0].LpMint != exact.lpMint.String() {
		t.Fatalf("expected only the supply 1.0 pool, got %+v", prices)
	}
	if !prices[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected price 2, got %s", prices[0].Price)
	}
	if len(skipped) != 1 || skipped[0].Reason != model.SkipLowSupply {
		t.Fatalf("expected supply skip, got %+v", skipped)
	}
}

func TestComputeLpPricesZeroPriceExcluded(t *testing.T) {
	f := newEngineFixture()
	pool := newPoolFixture(1)
	f.addPool(pool, "100", "300", 100, 0)
	f.setPrice(pool.baseMint, "2")
	f.setPrice(pool.quoteMint, "0")

	prices, skipped, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{pool.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("expected no prices, got %+v", prices)
	}
	if len(skipped) != 1 || skipped[0].Reason != model.SkipUnpricedQuote {
		t.Fatalf("expected unpriced quote skip, got %+v", skipped)
	}
	// lp mints are only fetched for priced pools
	if len(f.accounts.calls) != 1 {
		t.Fatalf("expected only the pool fetch, got %d calls", len(f.accounts.calls))
	}
}

func TestComputeLpPricesIsolatesFailures(t *testing.T) {
	f := newEngineFixture()
	missing := newPoolFixture(1)
	garbage := newPoolFixture(2)
	good := newPoolFixture(3)
	f.accounts.accounts[garbage.address] = &model.Account{Data: []byte{1, 2, 3}}
	f.addPool(good, "100", "300", 100, 0)
	f.setPrice(good.baseMint, "2")
	f.setPrice(good.quoteMint, "1")

	pools := []solana.PublicKey{missing.address, garbage.address, good.address}
	prices, skipped, err := f.engine().ComputeLpPrices(context.Background(), pools, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 1 || prices[0].Pool != good.address.String() {
		t.Fatalf("expected only the good pool, got %+v", prices)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skips, got %+v", skipped)
	}
	if skipped[0].Reason != model.SkipMissingAccount || skipped[1].Reason != model.SkipDecodePool {
		t.Fatalf("unexpected skip reasons: %+v", skipped)
	}
}

func TestComputeLpPricesMissingVaultCountsAsZero(t *testing.T) {
	f := newEngineFixture()
	pool := newPoolFixture(1)
	f.addPool(pool, "100", "300", 100, 0)
	delete(f.balances, pool.quoteVault)
	f.setPrice(pool.baseMint, "2")
	f.setPrice(pool.quoteMint, "1")

	prices, _, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{pool.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 1 || !prices[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected price 2, got %+v", prices)
	}
}

func TestComputeLpPricesNegativeReservesKept(t *testing.T) {
	f := newEngineFixture()
	pool := newPoolFixture(1)
	pool.basePnl = 200_000_000
	f.addPool(pool, "100", "300", 100, 0)
	f.setPrice(pool.baseMint, "1")
	f.setPrice(pool.quoteMint, "1")

	prices, _, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{pool.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// base = 100 - 200 = -100, quote = 300
	if len(prices) != 1 || !prices[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected unclamped price 2, got %+v", prices)
	}
}

func TestComputeLpPricesSharedTokenQueriedOnce(t *testing.T) {
	f := newEngineFixture()
	a := newPoolFixture(1)
	b := newPoolFixture(2)
	b.quoteMint = a.quoteMint
	f.addPool(a, "1", "1", 1, 0)
	f.addPool(b, "1", "1", 1, 0)
	f.setPrice(a.baseMint, "1")
	f.setPrice(b.baseMint, "1")
	f.setPrice(a.quoteMint, "1")

	prices, _, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{a.address, b.address}, price.NewCache())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
	if calls := f.source.calls[a.quoteMint.String()]; calls != 1 {
		t.Fatalf("expected shared quote mint queried once, got %d", calls)
	}
}

func TestComputeLpPricesFetchError(t *testing.T) {
	f := newEngineFixture()
	f.accounts.err = errors.New("rpc down")
	if _, _, err := f.engine().ComputeLpPrices(context.Background(), []solana.PublicKey{key(1, 0)}, nil); err == nil {
		t.Fatalf("expected error when pool fetch fails")
	}
}
