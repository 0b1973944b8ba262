package dex

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"whaleScope/internal/model"
)

func TestLayoutSpans(t *testing.T) {
	cases := map[string]struct {
		layout Layout
		want   int
	}{
		"mint":          {MintLayout, 82},
		"token_account": {TokenAccountLayout, 165},
		"amm_v4":        {AmmV4Layout, 752},
		"open_orders":   {OpenOrdersLayout, 3228},
	}
	for name, tc := range cases {
		if got := tc.layout.Span(); got != tc.want {
			t.Fatalf("%s span mismatch: %d != %d", name, got, tc.want)
		}
	}
}

func TestAmmV4Offsets(t *testing.T) {
	want := map[string]int{
		"baseDecimal":      32,
		"quoteDecimal":     40,
		"baseNeedTakePnl":  192,
		"quoteNeedTakePnl": 200,
		"baseVault":        336,
		"lpMint":           464,
		"openOrders":       496,
		"marketProgramId":  560,
		"lpReserve":        720,
	}
	for name, offset := range want {
		got, ok := AmmV4Layout.Offset(name)
		if !ok {
			t.Fatalf("field %s not found", name)
		}
		if got != offset {
			t.Fatalf("%s offset mismatch: %d != %d", name, got, offset)
		}
	}
}

func TestDecodeShortBlob(t *testing.T) {
	if _, err := DecodeMint(make([]byte, 81)); err == nil {
		t.Fatalf("expected error for short mint")
	}
	if _, err := DecodePoolState(solana.PublicKey{}, make([]byte, 100)); err == nil {
		t.Fatalf("expected error for short pool state")
	}
}

func TestDecodeMint(t *testing.T) {
	authority := testKey(7)
	data := encode(t, MintLayout, map[string]interface{}{
		"mintAuthorityOption": true,
		"mintAuthority":       authority,
		"supply":              uint64(1_500_000),
		"decimals":            uint8(6),
		"initialized":         true,
	})

	mint, err := DecodeMint(data)
	if err != nil {
		t.Fatalf("decode mint: %v", err)
	}
	if mint.Supply != 1_500_000 || mint.Decimals != 6 {
		t.Fatalf("unexpected mint: %+v", mint)
	}
	if !mint.MintAuthorityOption || !mint.MintAuthority.Equals(authority) {
		t.Fatalf("unexpected authority: %+v", mint)
	}
	if mint.FreezeAuthorityOption {
		t.Fatalf("freeze authority should be absent")
	}
}

func TestDecodeMintRejectsBadFlags(t *testing.T) {
	data := encode(t, MintLayout, map[string]interface{}{"initialized": true})
	data[0] = 2
	if _, err := DecodeMint(data); err == nil {
		t.Fatalf("expected error for option tag 2")
	}

	data = encode(t, MintLayout, map[string]interface{}{"initialized": true})
	offset, _ := MintLayout.Offset("initialized")
	data[offset] = 3
	if _, err := DecodeMint(data); err == nil {
		t.Fatalf("expected error for bool byte 3")
	}

	data = encode(t, MintLayout, map[string]interface{}{"supply": uint64(1)})
	if _, err := DecodeMint(data); err == nil {
		t.Fatalf("expected error for uninitialized mint")
	}
}

func TestDecodeTokenAccount(t *testing.T) {
	mint := testKey(1)
	owner := testKey(2)
	data := encode(t, TokenAccountLayout, map[string]interface{}{
		"mint":   mint,
		"owner":  owner,
		"amount": uint64(42),
		"state":  uint8(model.AccountStateInitialized),
	})

	account, err := DecodeTokenAccount(data)
	if err != nil {
		t.Fatalf("decode token account: %v", err)
	}
	if !account.Owner.Equals(owner) || !account.Mint.Equals(mint) || account.Amount != 42 {
		t.Fatalf("unexpected account: %+v", account)
	}

	offset, _ := TokenAccountLayout.Offset("state")
	if offset != 108 {
		t.Fatalf("state offset mismatch: %d", offset)
	}
	data[offset] = 3
	if _, err := DecodeTokenAccount(data); err == nil {
		t.Fatalf("expected error for state 3")
	}
	data[offset] = 0
	if _, err := DecodeTokenAccount(data); err == nil {
		t.Fatalf("expected error for uninitialized account")
	}
}

func TestDecodePoolState(t *testing.T) {
	address := testKey(9)
	data := encode(t, AmmV4Layout, map[string]interface{}{
		"status":           uint64(6),
		"baseDecimal":      uint64(9),
		"quoteDecimal":     uint64(6),
		"baseNeedTakePnl":  uint64(1000),
		"quoteNeedTakePnl": uint64(2000),
		"swapBaseInAmount": new(big.Int).Lsh(big.NewInt(1), 100),
		"baseVault":        testKey(10),
		"quoteVault":       testKey(11),
		"baseMint":         testKey(12),
		"quoteMint":        testKey(13),
		"lpMint":           testKey(14),
		"openOrders":       testKey(15),
		"marketProgramId":  OpenBookProgramID,
		"lpReserve":        uint64(77),
	})

	pool, err := DecodePoolState(address, data)
	if err != nil {
		t.Fatalf("decode pool: %v", err)
	}
	if pool.BaseDecimals != 9 || pool.QuoteDecimals != 6 {
		t.Fatalf("unexpected decimals: %+v", pool)
	}
	if pool.BaseNeedTakePnl != 1000 || pool.QuoteNeedTakePnl != 2000 {
		t.Fatalf("unexpected pnl: %+v", pool)
	}
	if !pool.LpMint.Equals(testKey(14)) || !pool.OpenOrders.Equals(testKey(15)) {
		t.Fatalf("unexpected keys: %+v", pool)
	}
	if !pool.MarketProgramID.Equals(OpenBookProgramID) || pool.LpReserve != 77 {
		t.Fatalf("unexpected market fields: %+v", pool)
	}
	if !pool.Address.Equals(address) {
		t.Fatalf("address not carried: %s", pool.Address)
	}

	rec, err := AmmV4Layout.Decode(data)
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if got := rec.Uint128("swapBaseInAmount"); got.Cmp(new(big.Int).Lsh(big.NewInt(1), 100)) != 0 {
		t.Fatalf("u128 mismatch: %s", got)
	}
}

func TestDecodePoolStateDecimalsOutOfRange(t *testing.T) {
	data := encode(t, AmmV4Layout, map[string]interface{}{
		"baseDecimal": uint64(300),
		"lpMint":      testKey(1),
	})
	if _, err := DecodePoolState(testKey(2), data); err == nil {
		t.Fatalf("expected error for decimals > 255")
	}
}

func TestDecodeOpenOrders(t *testing.T) {
	data := encode(t, OpenOrdersLayout, map[string]interface{}{
		"accountFlags":    openOrdersFlagInitialized | openOrdersFlagOpenOrders,
		"baseTokenTotal":  uint64(500),
		"quoteTokenTotal": uint64(800),
	})
	if offset, _ := OpenOrdersLayout.Offset("baseTokenTotal"); offset != 85 {
		t.Fatalf("baseTokenTotal offset mismatch: %d", offset)
	}

	totals, err := DecodeOpenOrders(data)
	if err != nil {
		t.Fatalf("decode open orders: %v", err)
	}
	if totals.BaseTotal != 500 || totals.QuoteTotal != 800 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

type fakeFetcher struct {
	accounts map[solana.PublicKey]*model.Account
	err      error
}

func (f *fakeFetcher) FetchAccounts(_ context.Context, addresses []solana.PublicKey) ([]*model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Account, len(addresses))
	for i, address := range addresses {
		out[i] = f.accounts[address]
	}
	return out, nil
}

func TestOpenOrdersReaderLoad(t *testing.T) {
	address := testKey(3)
	data := encode(t, OpenOrdersLayout, map[string]interface{}{
		"accountFlags":    openOrdersFlagInitialized | openOrdersFlagOpenOrders,
		"baseTokenTotal":  uint64(5),
		"quoteTokenTotal": uint64(6),
	})
	fetcher := &fakeFetcher{accounts: map[solana.PublicKey]*model.Account{
		address: {Owner: OpenBookProgramID, Data: data},
	}}
	reader := NewOpenOrdersReader(fetcher, zap.NewNop())

	totals, ok := reader.Load(context.Background(), address, solana.PublicKey{})
	if !ok || totals.BaseTotal != 5 || totals.QuoteTotal != 6 {
		t.Fatalf("unexpected totals: %+v ok=%v", totals, ok)
	}

	totals, ok = reader.Load(context.Background(), address, testKey(99))
	if ok || totals.BaseTotal != 0 || totals.QuoteTotal != 0 {
		t.Fatalf("expected zero totals for wrong owner: %+v", totals)
	}

	totals, ok = reader.Load(context.Background(), testKey(4), OpenBookProgramID)
	if ok || totals != (model.OpenOrdersTotals{}) {
		t.Fatalf("expected zero totals for missing account: %+v", totals)
	}

	reader = NewOpenOrdersReader(&fakeFetcher{err: errors.New("rpc down")}, nil)
	if _, ok := reader.Load(context.Background(), address, OpenBookProgramID); ok {
		t.Fatalf("expected soft failure on fetch error")
	}
}

func testKey(seed byte) solana.PublicKey {
	var key solana.PublicKey
	for i := range key {
		key[i] = seed
	}
	return key
}

// encode writes values at their layout offsets; omitted fields stay zero.
func encode(t *testing.T, layout Layout, values map[string]interface{}) []byte {
	t.Helper()
	data := make([]byte, layout.Span())
	for name, value := range values {
		offset, ok := layout.Offset(name)
		if !ok {
			t.Fatalf("%s: unknown field %s", layout.Name, name)
		}
		switch v := value.(type) {
		case uint8:
			data[offset] = v
		case bool:
			if v {
				data[offset] = 1
			}
		case uint32:
			binary.LittleEndian.PutUint32(data[offset:], v)
		case uint64:
			binary.LittleEndian.PutUint64(data[offset:], v)
		case *big.Int:
			be := v.FillBytes(make([]byte, 16))
			for i := 0; i < 16; i++ {
				data[offset+i] = be[15-i]
			}
		case solana.PublicKey:
			copy(data[offset:], v[:])
		default:
			t.Fatalf("%s: unsupported value type %T", name, value)
		}
	}
	return data
}
