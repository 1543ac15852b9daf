// Package exchange implements the marketplace's four state transitions
// against a ledger: initialize the registry, list an NFT into escrow, buy,
// and cancel. Callers supply transition parameters; every program account is
// re-derived from its seeds rather than trusted, and each transition commits
// atomically or not at all.
package exchange

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tokensea/marketplace-server/pkg/ledger"
	"github.com/tokensea/marketplace-server/pkg/solana/marketplace"
	"github.com/tokensea/marketplace-server/pkg/solana/token"
)

type Engine struct {
	log    *logrus.Entry
	ledger *ledger.Ledger
}

func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{
		log:    logrus.StandardLogger().WithField("type", "exchange/engine"),
		ledger: l,
	}
}

// InitializeMarketplace creates the singleton registry record, capturing the
// caller as its authority and the configured exchange fee.
func (e *Engine) InitializeMarketplace(ctx context.Context, authority ed25519.PublicKey, fee uint64) error {
	log := e.log.WithFields(logrus.Fields{
		"method":    "InitializeMarketplace",
		"trace":     uuid.NewString(),
		"authority": base58.Encode(authority),
	})

	marketplaceAddress, bump, err := marketplace.GetMarketplaceAddress()
	if err != nil {
		return errors.Wrap(err, "failed to derive marketplace address")
	}

	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		account, err := v.CreateAccount(authority, marketplaceAddress, marketplace.PROGRAM_ID, marketplace.MarketplaceAccountSize)
		if err != nil {
			if errors.Is(err, ledger.ErrAccountExists) {
				return ErrAlreadyInitialized
			}
			return err
		}

		state := &marketplace.MarketplaceAccount{
			Authority: authority,
			Fee:       fee,
			Bump:      bump,
		}
		account.Data = state.Marshal()
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("failure initializing marketplace")
		return err
	}

	log.WithField("fee", fee).Info("marketplace initialized")
	return nil
}

type ListParams struct {
	Seller ed25519.PublicKey
	Mint   ed25519.PublicKey
	Price  uint64

	// Payment is the medium the listing is to be paid in.
	Payment marketplace.PaymentMedium

	// SellerTokenAccount is the seller's holding account for Mint. Defaults
	// to the seller's associated token account.
	SellerTokenAccount ed25519.PublicKey
}

// List creates the listing record and escrow for an NFT and moves the single
// token unit from the seller's holding account into escrow.
func (e *Engine) List(ctx context.Context, params *ListParams) error {
	log := e.log.WithFields(logrus.Fields{
		"method": "List",
		"trace":  uuid.NewString(),
		"mint":   base58.Encode(params.Mint),
		"seller": base58.Encode(params.Seller),
	})

	// Validated before any account is touched.
	if params.Price == 0 {
		return ErrInvalidPrice
	}

	listingAddress, listingBump, err := marketplace.GetListingAddress(&marketplace.GetListingAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive listing address")
	}
	escrowAddress, _, err := marketplace.GetEscrowAddress(&marketplace.GetEscrowAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow address")
	}

	sellerTokenAccount, err := expectedHoldingAccount(params.SellerTokenAccount, params.Seller, params.Mint)
	if err != nil {
		return err
	}

	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		if err := validateNftMint(v, params.Mint); err != nil {
			return err
		}

		listingAccount, err := v.CreateAccount(params.Seller, listingAddress, marketplace.PROGRAM_ID, marketplace.ListingAccountSize)
		if err != nil {
			if errors.Is(err, ledger.ErrAccountExists) {
				return ErrAlreadyListed
			}
			return err
		}

		state := &marketplace.ListingAccount{
			Seller:      params.Seller,
			Price:       params.Price,
			PaymentMint: params.Payment.Mint(),
			Bump:        listingBump,
		}
		listingAccount.Data = state.Marshal()

		// The escrow's owner authority is its own address, leaving the
		// program's derivation as the only path to moving the token out.
		if err := v.InitializeTokenAccount(params.Seller, escrowAddress, params.Mint, escrowAddress); err != nil {
			if errors.Is(err, ledger.ErrAccountExists) {
				return ErrAlreadyListed
			}
			return err
		}

		return v.TokenTransfer(params.Mint, sellerTokenAccount, escrowAddress, 1)
	})
	if err != nil {
		log.WithError(err).Warn("failure listing nft")
		return err
	}

	log.WithFields(logrus.Fields{
		"price":          params.Price,
		"payment_medium": params.Payment.String(),
	}).Info("nft listed")
	return nil
}

type BuyParams struct {
	Buyer ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Seller is the identity the buyer claims the listing belongs to. It
	// must match the listing record exactly.
	Seller ed25519.PublicKey

	// Payment is the medium the buyer claims the listing is paid in. It
	// must match the listing record exactly.
	Payment marketplace.PaymentMedium

	// BuyerTokenAccount is the buyer's holding account for Mint, created if
	// it does not exist yet. Defaults to the buyer's associated token
	// account.
	BuyerTokenAccount ed25519.PublicKey

	// Payment accounts for the claimed payment mint. Required exactly when
	// Payment is a fungible token medium.
	BuyerPaymentAccount  ed25519.PublicKey
	SellerPaymentAccount ed25519.PublicKey
}

// Buy atomically pays the listed price from buyer to seller, releases the
// escrowed NFT to the buyer, and closes the listing and escrow with their
// reserves going to the seller.
func (e *Engine) Buy(ctx context.Context, params *BuyParams) error {
	log := e.log.WithFields(logrus.Fields{
		"method": "Buy",
		"trace":  uuid.NewString(),
		"mint":   base58.Encode(params.Mint),
		"buyer":  base58.Encode(params.Buyer),
	})

	listingAddress, _, err := marketplace.GetListingAddress(&marketplace.GetListingAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive listing address")
	}
	escrowAddress, _, err := marketplace.GetEscrowAddress(&marketplace.GetEscrowAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow address")
	}

	buyerTokenAccount, err := expectedHoldingAccount(params.BuyerTokenAccount, params.Buyer, params.Mint)
	if err != nil {
		return err
	}

	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		listing, err := loadListing(v, listingAddress)
		if err != nil {
			return err
		}
		if _, err := v.GetTokenAccount(escrowAddress); err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return ErrListingNotFound
			}
			return err
		}

		if !bytes.Equal(params.Seller, listing.Seller) {
			return ErrInvalidSeller
		}
		if !listing.Medium().Equals(params.Payment) {
			return ErrPaymentMediumMismatch
		}

		// The registry fee is captured at initialization but intentionally
		// not deducted here, so the seller is credited the full price.
		if registry, err := loadMarketplace(v); err == nil && registry.Fee > 0 {
			log.WithField("fee", registry.Fee).Warn("configured marketplace fee is not charged")
		}

		if err := e.payForListing(v, params, listing); err != nil {
			return err
		}

		// The buyer's holding account may not exist yet for a mint they've
		// never held.
		if _, err := v.GetTokenAccount(buyerTokenAccount); errors.Is(err, ledger.ErrAccountNotFound) {
			if err := v.InitializeTokenAccount(params.Buyer, buyerTokenAccount, params.Mint, params.Buyer); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := v.TokenTransfer(params.Mint, escrowAddress, buyerTokenAccount, 1); err != nil {
			return err
		}
		if err := v.CloseTokenAccount(escrowAddress, listing.Seller); err != nil {
			return err
		}
		return v.CloseAccount(listingAddress, listing.Seller)
	})
	if err != nil {
		log.WithError(err).Warn("failure buying nft")
		return err
	}

	log.WithField("payment_medium", params.Payment.String()).Info("nft bought")
	return nil
}

// payForListing moves the listed price from the buyer to the seller over the
// listing's payment medium. The claimed medium has already been matched
// against the listing; what remains is validating the auxiliary accounts each
// variant requires or forbids.
func (e *Engine) payForListing(v *ledger.View, params *BuyParams, listing *marketplace.ListingAccount) error {
	medium := listing.Medium()
	if medium.IsNative() {
		// Direct balance transfer; fungible payment accounts must not be
		// supplied on this path.
		if len(params.BuyerPaymentAccount) > 0 || len(params.SellerPaymentAccount) > 0 {
			return ErrPaymentMediumMismatch
		}
		return v.Transfer(params.Buyer, listing.Seller, listing.Price)
	}

	if len(params.BuyerPaymentAccount) == 0 || len(params.SellerPaymentAccount) == 0 {
		return ErrPaymentMediumMismatch
	}

	paymentMint := medium.Mint()
	for _, address := range []ed25519.PublicKey{params.BuyerPaymentAccount, params.SellerPaymentAccount} {
		account, err := v.GetTokenAccount(address)
		if err != nil {
			return err
		}
		if !bytes.Equal(account.Mint, paymentMint) {
			return ErrPaymentMediumMismatch
		}
	}

	return v.TokenTransfer(paymentMint, params.BuyerPaymentAccount, params.SellerPaymentAccount, listing.Price)
}

type CancelParams struct {
	Seller ed25519.PublicKey
	Mint   ed25519.PublicKey

	// SellerTokenAccount is the seller's holding account for Mint. Defaults
	// to the seller's associated token account.
	SellerTokenAccount ed25519.PublicKey
}

// Cancel returns the escrowed NFT to the seller and closes the listing and
// escrow, restoring the pre-listing state.
func (e *Engine) Cancel(ctx context.Context, params *CancelParams) error {
	log := e.log.WithFields(logrus.Fields{
		"method": "Cancel",
		"trace":  uuid.NewString(),
		"mint":   base58.Encode(params.Mint),
		"seller": base58.Encode(params.Seller),
	})

	listingAddress, _, err := marketplace.GetListingAddress(&marketplace.GetListingAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive listing address")
	}
	escrowAddress, _, err := marketplace.GetEscrowAddress(&marketplace.GetEscrowAddressArgs{Mint: params.Mint})
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow address")
	}

	sellerTokenAccount, err := expectedHoldingAccount(params.SellerTokenAccount, params.Seller, params.Mint)
	if err != nil {
		return err
	}

	err = e.ledger.Execute(ctx, func(v *ledger.View) error {
		listing, err := loadListing(v, listingAddress)
		if err != nil {
			return err
		}

		if !bytes.Equal(params.Seller, listing.Seller) {
			return ErrInvalidSeller
		}

		if err := v.TokenTransfer(params.Mint, escrowAddress, sellerTokenAccount, 1); err != nil {
			return err
		}
		if err := v.CloseTokenAccount(escrowAddress, listing.Seller); err != nil {
			return err
		}
		return v.CloseAccount(listingAddress, listing.Seller)
	})
	if err != nil {
		log.WithError(err).Warn("failure cancelling listing")
		return err
	}

	log.Info("listing cancelled")
	return nil
}

// expectedHoldingAccount re-derives the associated token account for a
// wallet and mint. A caller-supplied address must match the derivation.
func expectedHoldingAccount(supplied, wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	expected, err := token.GetAssociatedAccount(wallet, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive associated token account")
	}
	if len(supplied) > 0 && !bytes.Equal(supplied, expected) {
		return nil, ErrAddressMismatch
	}
	return expected, nil
}

func loadListing(v *ledger.View, listingAddress ed25519.PublicKey) (*marketplace.ListingAccount, error) {
	account, err := v.GetAccount(listingAddress)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	var listing marketplace.ListingAccount
	if err := listing.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal listing account")
	}
	return &listing, nil
}

func loadMarketplace(v *ledger.View) (*marketplace.MarketplaceAccount, error) {
	marketplaceAddress, _, err := marketplace.GetMarketplaceAddress()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive marketplace address")
	}

	account, err := v.GetAccount(marketplaceAddress)
	if err != nil {
		return nil, err
	}

	var registry marketplace.MarketplaceAccount
	if err := registry.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal marketplace account")
	}
	return &registry, nil
}

// validateNftMint enforces that the listed mint is actually a non-fungible
// token: a fixed supply of exactly one indivisible unit.
func validateNftMint(v *ledger.View, mintAddress ed25519.PublicKey) error {
	mint, err := v.GetMint(mintAddress)
	if err != nil {
		return ErrInvalidMint
	}

	if mint.Supply != 1 || mint.Decimals != 0 || len(mint.MintAuthority) > 0 {
		return ErrInvalidMint
	}
	return nil
}
