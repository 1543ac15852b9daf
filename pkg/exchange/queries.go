package exchange

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/tokensea/marketplace-server/pkg/ledger"
	"github.com/tokensea/marketplace-server/pkg/solana/marketplace"
)

// GetMarketplace returns the registry record, or ledger.ErrAccountNotFound
// when the registry was never initialized.
func (e *Engine) GetMarketplace(ctx context.Context) (registry *marketplace.MarketplaceAccount, err error) {
	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		registry, err = loadMarketplace(v)
		return err
	})
	return registry, err
}

// GetListing returns the listing record for a mint, or ErrListingNotFound.
func (e *Engine) GetListing(ctx context.Context, mint ed25519.PublicKey) (listing *marketplace.ListingAccount, err error) {
	listingAddress, _, err := marketplace.GetListingAddress(&marketplace.GetListingAddressArgs{Mint: mint})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive listing address")
	}

	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		listing, err = loadListing(v, listingAddress)
		return err
	})
	return listing, err
}

// GetEscrowBalance returns the number of token units held by the escrow for
// a mint, or ErrListingNotFound when no escrow exists.
func (e *Engine) GetEscrowBalance(ctx context.Context, mint ed25519.PublicKey) (uint64, error) {
	escrowAddress, _, err := marketplace.GetEscrowAddress(&marketplace.GetEscrowAddressArgs{Mint: mint})
	if err != nil {
		return 0, errors.Wrap(err, "failed to derive escrow address")
	}

	account, err := e.ledger.GetTokenAccount(ctx, escrowAddress)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return 0, ErrListingNotFound
		}
		return 0, err
	}
	return account.Amount, nil
}
