package model

import "github.com/gagliardetto/solana-go"

// Account is a raw on-chain account blob together with its owning program.
type Account struct {
	Owner solana.PublicKey
	Data  []byte
}
