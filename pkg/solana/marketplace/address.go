package marketplace

import (
	"crypto/ed25519"

	"github.com/tokensea/marketplace-server/pkg/solana"
)

var (
	MarketplacePrefix = []byte("marketplace")
	ListingPrefix     = []byte("listing")
	EscrowPrefix      = []byte("escrow")
)

// GetMarketplaceAddress derives the address of the singleton marketplace
// registry.
func GetMarketplaceAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MarketplacePrefix,
	)
}

type GetListingAddressArgs struct {
	Mint ed25519.PublicKey
}

// GetListingAddress derives the listing record address for an NFT mint.
func GetListingAddress(args *GetListingAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		ListingPrefix,
		args.Mint,
	)
}

type GetEscrowAddressArgs struct {
	Mint ed25519.PublicKey
}

// GetEscrowAddress derives the escrow token account address for an NFT mint.
func GetEscrowAddress(args *GetEscrowAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		EscrowPrefix,
		args.Mint,
	)
}
