package exchange

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/tokensea/marketplace-server/pkg/solana"
	"github.com/tokensea/marketplace-server/pkg/solana/marketplace"
)

// Process executes a wire-format marketplace instruction. The supplied
// program accounts are never trusted: each is re-derived from its seeds and
// a mismatch rejects the instruction before anything moves.
func (e *Engine) Process(ctx context.Context, instruction solana.Instruction) error {
	instructionType, err := marketplace.GetInstructionType(instruction)
	if err != nil {
		return err
	}

	switch instructionType {
	case marketplace.InstructionTypeInitializeMarketplace:
		return e.processInitializeMarketplace(ctx, instruction)
	case marketplace.InstructionTypeListNft:
		return e.processListNft(ctx, instruction)
	case marketplace.InstructionTypeBuyNft:
		return e.processBuyNft(ctx, instruction)
	case marketplace.InstructionTypeCancelNft:
		return e.processCancelNft(ctx, instruction)
	default:
		return marketplace.ErrInvalidInstructionData
	}
}

func (e *Engine) processInitializeMarketplace(ctx context.Context, instruction solana.Instruction) error {
	decompiled, err := marketplace.DecompileInitializeMarketplace(instruction)
	if err != nil {
		return err
	}

	expected, _, err := marketplace.GetMarketplaceAddress()
	if err != nil {
		return errors.Wrap(err, "failed to derive marketplace address")
	}
	if !bytes.Equal(decompiled.Accounts.Marketplace, expected) {
		return ErrAddressMismatch
	}

	return e.InitializeMarketplace(ctx, decompiled.Accounts.Authority, decompiled.Args.Fee)
}

func (e *Engine) processListNft(ctx context.Context, instruction solana.Instruction) error {
	decompiled, err := marketplace.DecompileListNft(instruction)
	if err != nil {
		return err
	}

	if err := verifyProgramAccounts(decompiled.Accounts.Mint, decompiled.Accounts.Listing, decompiled.Accounts.Escrow); err != nil {
		return err
	}

	return e.List(ctx, &ListParams{
		Seller:             decompiled.Accounts.Seller,
		Mint:               decompiled.Accounts.Mint,
		Price:              decompiled.Args.Price,
		Payment:            decompiled.Args.Payment,
		SellerTokenAccount: decompiled.Accounts.SellerTokenAccount,
	})
}

func (e *Engine) processBuyNft(ctx context.Context, instruction solana.Instruction) error {
	decompiled, err := marketplace.DecompileBuyNft(instruction)
	if err != nil {
		return err
	}

	if err := verifyProgramAccounts(decompiled.Accounts.Mint, decompiled.Accounts.Listing, decompiled.Accounts.Escrow); err != nil {
		return err
	}

	return e.Buy(ctx, &BuyParams{
		Buyer:                decompiled.Accounts.Buyer,
		Mint:                 decompiled.Accounts.Mint,
		Seller:               decompiled.Accounts.Seller,
		Payment:              decompiled.Payment,
		BuyerTokenAccount:    decompiled.Accounts.BuyerTokenAccount,
		BuyerPaymentAccount:  decompiled.Accounts.BuyerPaymentAccount,
		SellerPaymentAccount: decompiled.Accounts.SellerPaymentAccount,
	})
}

func (e *Engine) processCancelNft(ctx context.Context, instruction solana.Instruction) error {
	decompiled, err := marketplace.DecompileCancelNft(instruction)
	if err != nil {
		return err
	}

	if err := verifyProgramAccounts(decompiled.Accounts.Mint, decompiled.Accounts.Listing, decompiled.Accounts.Escrow); err != nil {
		return err
	}

	return e.Cancel(ctx, &CancelParams{
		Seller:             decompiled.Accounts.Seller,
		Mint:               decompiled.Accounts.Mint,
		SellerTokenAccount: decompiled.Accounts.SellerTokenAccount,
	})
}

// verifyProgramAccounts checks the supplied listing and escrow addresses
// against their derivations for the mint.
func verifyProgramAccounts(mint, suppliedListing, suppliedEscrow ed25519.PublicKey) error {
	listingAddress, _, err := marketplace.GetListingAddress(&marketplace.GetListingAddressArgs{Mint: mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive listing address")
	}
	if !bytes.Equal(suppliedListing, listingAddress) {
		return ErrAddressMismatch
	}

	escrowAddress, _, err := marketplace.GetEscrowAddress(&marketplace.GetEscrowAddressArgs{Mint: mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow address")
	}
	if !bytes.Equal(suppliedEscrow, escrowAddress) {
		return ErrAddressMismatch
	}
	return nil
}
