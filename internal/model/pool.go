package model

import "github.com/gagliardetto/solana-go"

// PoolState is a decoded Raydium AMM v4 pool account.
type PoolState struct {
	Address          solana.PublicKey
	Status           uint64
	BaseDecimals     uint8
	QuoteDecimals    uint8
	BaseNeedTakePnl  uint64
	QuoteNeedTakePnl uint64
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	LpMint           solana.PublicKey
	OpenOrders       solana.PublicKey
	MarketID         solana.PublicKey
	MarketProgramID  solana.PublicKey
	LpReserve        uint64
}

// OpenOrdersTotals holds raw base and quote amounts committed to the order book.
type OpenOrdersTotals struct {
	BaseTotal  uint64
	QuoteTotal uint64
}
