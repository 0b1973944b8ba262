package dex

import (
	"fmt"

	"whaleScope/internal/model"
)

// MintLayout is the SPL token mint account (82 bytes).
var MintLayout = Layout{
	Name: "mint",
	Fields: []Field{
		option("mintAuthorityOption"),
		pubkey("mintAuthority"),
		u64("supply"),
		u8("decimals"),
		boolean("initialized"),
		option("freezeAuthorityOption"),
		pubkey("freezeAuthority"),
	},
}

// TokenAccountLayout is the SPL token holding account (165 bytes).
var TokenAccountLayout = Layout{
	Name: "token_account",
	Fields: []Field{
		pubkey("mint"),
		pubkey("owner"),
		u64("amount"),
		option("delegateOption"),
		pubkey("delegate"),
		u8("state"),
		option("isNativeOption"),
		u64("isNative"),
		u64("delegatedAmount"),
		option("closeAuthorityOption"),
		pubkey("closeAuthority"),
	},
}

// DecodeMint decodes an SPL mint account.
func DecodeMint(data []byte) (model.MintAccount, error) {
	rec, err := MintLayout.Decode(data)
	if err != nil {
		return model.MintAccount{}, err
	}
	mint := model.MintAccount{
		MintAuthorityOption:   rec.Bool("mintAuthorityOption"),
		MintAuthority:         rec.PublicKey("mintAuthority"),
		Supply:                rec.Uint64("supply"),
		Decimals:              rec.Uint8("decimals"),
		Initialized:           rec.Bool("initialized"),
		FreezeAuthorityOption: rec.Bool("freezeAuthorityOption"),
		FreezeAuthority:       rec.PublicKey("freezeAuthority"),
	}
	if !mint.Initialized {
		return model.MintAccount{}, fmt.Errorf("mint: not initialized")
	}
	return mint, nil
}

// DecodeTokenAccount decodes an SPL token account. Uninitialized accounts are
// rejected because their owner field is meaningless.
func DecodeTokenAccount(data []byte) (model.TokenAccount, error) {
	rec, err := TokenAccountLayout.Decode(data)
	if err != nil {
		return model.TokenAccount{}, err
	}
	state := model.AccountState(rec.Uint8("state"))
	switch state {
	case model.AccountStateInitialized, model.AccountStateFrozen:
	case model.AccountStateUninitialized:
		return model.TokenAccount{}, fmt.Errorf("token_account: not initialized")
	default:
		return model.TokenAccount{}, fmt.Errorf("token_account: invalid state %d", state)
	}

	return model.TokenAccount{
		Mint:                 rec.PublicKey("mint"),
		Owner:                rec.PublicKey("owner"),
		Amount:               rec.Uint64("amount"),
		DelegateOption:       rec.Bool("delegateOption"),
		Delegate:             rec.PublicKey("delegate"),
		State:                state,
		IsNativeOption:       rec.Bool("isNativeOption"),
		IsNative:             rec.Uint64("isNative"),
		DelegatedAmount:      rec.Uint64("delegatedAmount"),
		CloseAuthorityOption: rec.Bool("closeAuthorityOption"),
		CloseAuthority:       rec.PublicKey("closeAuthority"),
	}, nil
}
