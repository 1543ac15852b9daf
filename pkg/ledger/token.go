package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/tokensea/marketplace-server/pkg/solana/token"
)

var (
	ErrMintMismatch        = errors.New("token account mint mismatch")
	ErrNonZeroTokenBalance = errors.New("token account balance must be zero")
	ErrFixedSupply         = errors.New("mint authority has been revoked")
)

// InitializeMint allocates a mint account. Pass a zero decimals and a later
// SetMintAuthority(nil) after a single MintTo to produce an NFT mint.
func (v *View) InitializeMint(payer, address, mintAuthority ed25519.PublicKey, decimals uint8) error {
	account, err := v.CreateAccount(payer, address, token.ProgramKey, token.MintSize)
	if err != nil {
		return err
	}

	mint := &token.Mint{
		MintAuthority: mintAuthority,
		Decimals:      decimals,
		IsInitialized: true,
	}
	account.Data = mint.Marshal()
	return nil
}

// InitializeTokenAccount allocates a token holding account for mint with the
// provided owner authority.
func (v *View) InitializeTokenAccount(payer, address, mint, authority ed25519.PublicKey) error {
	account, err := v.CreateAccount(payer, address, token.ProgramKey, token.AccountSize)
	if err != nil {
		return err
	}

	state := &token.Account{
		Mint:  mint,
		Owner: authority,
		State: token.AccountStateInitialized,
	}
	account.Data = state.Marshal()
	return nil
}

// MintTo issues amount new units of mint into destination.
func (v *View) MintTo(mintAddress, destination ed25519.PublicKey, amount uint64) error {
	mintAccount, mint, err := v.loadMint(mintAddress)
	if err != nil {
		return err
	}
	if len(mint.MintAuthority) == 0 {
		return ErrFixedSupply
	}

	destAccount, destState, err := v.loadTokenAccount(destination)
	if err != nil {
		return err
	}
	if !bytes.Equal(destState.Mint, mintAddress) {
		return ErrMintMismatch
	}

	mint.Supply += amount
	destState.Amount += amount
	mintAccount.Data = mint.Marshal()
	destAccount.Data = destState.Marshal()
	return nil
}

// SetMintAuthority replaces the mint authority. A nil authority revokes
// minting permanently, fixing the supply.
func (v *View) SetMintAuthority(mintAddress, authority ed25519.PublicKey) error {
	mintAccount, mint, err := v.loadMint(mintAddress)
	if err != nil {
		return err
	}

	mint.MintAuthority = authority
	mintAccount.Data = mint.Marshal()
	return nil
}

// TokenTransfer moves amount units of mint between two token accounts. Both
// accounts must be of the provided mint.
func (v *View) TokenTransfer(mint, source, destination ed25519.PublicKey, amount uint64) error {
	sourceAccount, sourceState, err := v.loadTokenAccount(source)
	if err != nil {
		return err
	}
	destAccount, destState, err := v.loadTokenAccount(destination)
	if err != nil {
		return err
	}

	if !bytes.Equal(sourceState.Mint, mint) || !bytes.Equal(destState.Mint, mint) {
		return ErrMintMismatch
	}
	if sourceState.Amount < amount {
		return ErrInsufficientBalance
	}

	sourceState.Amount -= amount
	destState.Amount += amount
	sourceAccount.Data = sourceState.Marshal()
	destAccount.Data = destState.Marshal()
	return nil
}

// CloseTokenAccount deletes an emptied token account, releasing its reserve
// to destination.
func (v *View) CloseTokenAccount(address, destination ed25519.PublicKey) error {
	_, state, err := v.loadTokenAccount(address)
	if err != nil {
		return err
	}
	if state.Amount != 0 {
		return ErrNonZeroTokenBalance
	}
	return v.CloseAccount(address, destination)
}

// GetTokenAccount returns the token state at address.
func (v *View) GetTokenAccount(address ed25519.PublicKey) (*token.Account, error) {
	_, state, err := v.loadTokenAccount(address)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// GetMint returns the mint state at address.
func (v *View) GetMint(address ed25519.PublicKey) (*token.Mint, error) {
	_, mint, err := v.loadMint(address)
	if err != nil {
		return nil, err
	}
	return mint, nil
}

func (v *View) loadTokenAccount(address ed25519.PublicKey) (*Account, *token.Account, error) {
	account, ok := v.load(address)
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	if !bytes.Equal(account.Owner, token.ProgramKey) {
		return nil, nil, ErrInvalidAccountData
	}

	var state token.Account
	if !state.Unmarshal(account.Data) {
		return nil, nil, ErrInvalidAccountData
	}
	return account, &state, nil
}

func (v *View) loadMint(address ed25519.PublicKey) (*Account, *token.Mint, error) {
	account, ok := v.load(address)
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	if !bytes.Equal(account.Owner, token.ProgramKey) {
		return nil, nil, ErrInvalidAccountData
	}

	var mint token.Mint
	if !mint.Unmarshal(account.Data) {
		return nil, nil, ErrInvalidAccountData
	}
	return account, &mint, nil
}

// GetTokenAccount returns the committed token state at address.
func (l *Ledger) GetTokenAccount(ctx context.Context, address ed25519.PublicKey) (state *token.Account, err error) {
	err = l.Execute(ctx, func(v *View) error {
		state, err = v.GetTokenAccount(address)
		return err
	})
	return state, err
}

// GetMint returns the committed mint state at address.
func (l *Ledger) GetMint(ctx context.Context, address ed25519.PublicKey) (mint *token.Mint, err error) {
	err = l.Execute(ctx, func(v *View) error {
		mint, err = v.GetMint(address)
		return err
	})
	return mint, err
}
