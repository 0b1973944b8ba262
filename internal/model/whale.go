package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Holder is one entry of a mint's largest-holder list.
type Holder struct {
	Account solana.PublicKey
	Amount  decimal.Decimal
}

// Whale is a wallet ranked by the value of its LP positions.
type Whale struct {
	Address string          `json:"address"`
	LpValue decimal.Decimal `json:"lpValue"`
}

// WhaleRecord is the stored form of one ranking entry.
type WhaleRecord struct {
	RunAt   time.Time       `json:"run_at"`
	Rank    int             `json:"rank"`
	Address string          `json:"address"`
	LpValue decimal.Decimal `json:"lp_value"`
}

// LpPriceRecord is the stored form of one LP price.
type LpPriceRecord struct {
	RunAt time.Time `json:"run_at"`
	LpPrice
}
