package model

import "github.com/gagliardetto/solana-go"

// MintAccount is a decoded SPL token mint.
type MintAccount struct {
	MintAuthorityOption   bool
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	Initialized           bool
	FreezeAuthorityOption bool
	FreezeAuthority       solana.PublicKey
}

// AccountState is the SPL token account state discriminant.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// TokenAccount is a decoded SPL token holding account.
type TokenAccount struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       bool
	Delegate             solana.PublicKey
	State                AccountState
	IsNativeOption       bool
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption bool
	CloseAuthority       solana.PublicKey
}
