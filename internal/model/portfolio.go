package model

import "github.com/shopspring/decimal"

// Portfolio is a wallet snapshot returned by the portfolio endpoint.
type Portfolio struct {
	Owner    string             `json:"owner"`
	Date     int64              `json:"date,omitempty"`
	Value    decimal.Decimal    `json:"value"`
	Elements []PortfolioElement `json:"elements"`
}

// PortfolioElement groups assets or liquidity positions of one platform.
type PortfolioElement struct {
	Type       string               `json:"type"`
	Label      string               `json:"label,omitempty"`
	PlatformID string               `json:"platformId,omitempty"`
	Value      decimal.Decimal      `json:"value"`
	Data       PortfolioElementData `json:"data"`
}

// PortfolioElementData holds either plain token assets or LP positions.
type PortfolioElementData struct {
	Assets      []PortfolioAsset     `json:"assets,omitempty"`
	Liquidities []PortfolioLiquidity `json:"liquidities,omitempty"`
}

// PortfolioAsset is a single token position.
type PortfolioAsset struct {
	Type  string          `json:"type,omitempty"`
	Value decimal.Decimal `json:"value"`
	Data  AssetData       `json:"data"`
}

// AssetData is the token detail of an asset.
type AssetData struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	Price   decimal.Decimal `json:"price"`
}

// PortfolioLiquidity is an LP position made of two or more assets.
type PortfolioLiquidity struct {
	Value  decimal.Decimal  `json:"value"`
	Assets []PortfolioAsset `json:"assets"`
}

// Change kinds and actions reported by a portfolio diff.
const (
	ChangeToken = "token"
	ChangeLp    = "lp"

	ActionBought = "Bought"
	ActionSold   = "Sold"
)

// Change is one position delta between two portfolio snapshots.
type Change struct {
	Kind   string          `json:"kind"`
	Action string          `json:"action"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Value  decimal.Decimal `json:"value"`
}
