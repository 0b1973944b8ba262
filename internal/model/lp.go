package model

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// LpInfo carries the human-unit reserves backing one LP mint.
type LpInfo struct {
	Pool        solana.PublicKey
	LpMint      solana.PublicKey
	BaseAmount  decimal.Decimal
	BaseMint    solana.PublicKey
	QuoteAmount decimal.Decimal
	QuoteMint   solana.PublicKey
}

// LpPrice is the fair unit price of an LP token.
type LpPrice struct {
	Pool      string          `json:"pool"`
	LpMint    string          `json:"lp_mint"`
	BaseMint  string          `json:"base_mint"`
	QuoteMint string          `json:"quote_mint"`
	Price     decimal.Decimal `json:"price"`
}

// Skip reasons recorded for pools excluded from valuation.
const (
	SkipMissingAccount = "missing_account"
	SkipDecodePool     = "decode_pool"
	SkipUnpricedBase   = "unpriced_base"
	SkipUnpricedQuote  = "unpriced_quote"
	SkipMissingLpMint  = "missing_lp_mint"
	SkipDecodeLpMint   = "decode_lp_mint"
	SkipLowSupply      = "supply_below_one"
)

// PoolSkip records why a pool was left out of the price set.
type PoolSkip struct {
	Pool   string `json:"pool"`
	LpMint string `json:"lp_mint,omitempty"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}
