package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"whaleScope/internal/model"
)

// AmmV4Layout is the Raydium liquidity pool state, version 4 (752 bytes).
var AmmV4Layout = Layout{
	Name: "amm_v4",
	Fields: []Field{
		u64("status"),
		u64("nonce"),
		u64("maxOrder"),
		u64("depth"),
		u64("baseDecimal"),
		u64("quoteDecimal"),
		u64("state"),
		u64("resetFlag"),
		u64("minSize"),
		u64("volMaxCutRatio"),
		u64("amountWaveRatio"),
		u64("baseLotSize"),
		u64("quoteLotSize"),
		u64("minPriceMultiplier"),
		u64("maxPriceMultiplier"),
		u64("systemDecimalValue"),
		u64("minSeparateNumerator"),
		u64("minSeparateDenominator"),
		u64("tradeFeeNumerator"),
		u64("tradeFeeDenominator"),
		u64("pnlNumerator"),
		u64("pnlDenominator"),
		u64("swapFeeNumerator"),
		u64("swapFeeDenominator"),
		u64("baseNeedTakePnl"),
		u64("quoteNeedTakePnl"),
		u64("quoteTotalPnl"),
		u64("baseTotalPnl"),
		u64("poolOpenTime"),
		u64("punishPcAmount"),
		u64("punishCoinAmount"),
		u64("orderbookToInitTime"),
		u128("swapBaseInAmount"),
		u128("swapQuoteOutAmount"),
		u64("swapBase2QuoteFee"),
		u128("swapQuoteInAmount"),
		u128("swapBaseOutAmount"),
		u64("swapQuote2BaseFee"),
		pubkey("baseVault"),
		pubkey("quoteVault"),
		pubkey("baseMint"),
		pubkey("quoteMint"),
		pubkey("lpMint"),
		pubkey("openOrders"),
		pubkey("marketId"),
		pubkey("marketProgramId"),
		pubkey("targetOrders"),
		pubkey("withdrawQueue"),
		pubkey("lpVault"),
		pubkey("owner"),
		u64("lpReserve"),
		padding("padding", 3*8),
	},
}

// maxDecimals bounds the decimal exponent a pool may declare; SPL mints store
// decimals in a single byte.
const maxDecimals = 255

// DecodePoolState decodes a Raydium AMM v4 pool account.
func DecodePoolState(address solana.PublicKey, data []byte) (model.PoolState, error) {
	rec, err := AmmV4Layout.Decode(data)
	if err != nil {
		return model.PoolState{}, err
	}

	baseDecimals := rec.Uint64("baseDecimal")
	quoteDecimals := rec.Uint64("quoteDecimal")
	if baseDecimals > maxDecimals || quoteDecimals > maxDecimals {
		return model.PoolState{}, fmt.Errorf("amm_v4: decimals out of range: base=%d quote=%d", baseDecimals, quoteDecimals)
	}

	state := model.PoolState{
		Address:          address,
		Status:           rec.Uint64("status"),
		BaseDecimals:     uint8(baseDecimals),
		QuoteDecimals:    uint8(quoteDecimals),
		BaseNeedTakePnl:  rec.Uint64("baseNeedTakePnl"),
		QuoteNeedTakePnl: rec.Uint64("quoteNeedTakePnl"),
		BaseVault:        rec.PublicKey("baseVault"),
		QuoteVault:       rec.PublicKey("quoteVault"),
		BaseMint:         rec.PublicKey("baseMint"),
		QuoteMint:        rec.PublicKey("quoteMint"),
		LpMint:           rec.PublicKey("lpMint"),
		OpenOrders:       rec.PublicKey("openOrders"),
		MarketID:         rec.PublicKey("marketId"),
		MarketProgramID:  rec.PublicKey("marketProgramId"),
		LpReserve:        rec.Uint64("lpReserve"),
	}
	if state.LpMint.IsZero() {
		return model.PoolState{}, fmt.Errorf("amm_v4: empty lp mint")
	}
	return state, nil
}
