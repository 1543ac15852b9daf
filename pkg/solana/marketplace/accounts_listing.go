package marketplace

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	ListingAccountSize = (8 + //discriminator
		32 + // seller
		8 + // price
		33 + // payment_mint option
		1 + // bump
		6) // padding
)

var ListingAccountDiscriminator = []byte{byte(AccountTypeListing), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// ListingAccount is the per-mint listing record: the seller entitled to the
// payment, the asking price, and the payment mint (nil for native payment).
// A listing exists exactly as long as the matching escrow holds the NFT.
type ListingAccount struct {
	Seller      ed25519.PublicKey
	Price       uint64
	PaymentMint ed25519.PublicKey
	Bump        uint8
}

// Medium returns the listing's payment medium as a tagged variant.
func (obj *ListingAccount) Medium() PaymentMedium {
	if len(obj.PaymentMint) == 0 {
		return NativePaymentMedium()
	}
	return TokenPaymentMedium(obj.PaymentMint)
}

func (obj *ListingAccount) Marshal() []byte {
	data := make([]byte, ListingAccountSize)

	var offset int
	putDiscriminator(data, ListingAccountDiscriminator, &offset)
	putKey(data, obj.Seller, &offset)
	putUint64(data, obj.Price, &offset)
	putOptionalKey(data, obj.PaymentMint, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *ListingAccount) Unmarshal(data []byte) error {
	if len(data) < ListingAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, ListingAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Seller, &offset)
	getUint64(data, &obj.Price, &offset)
	getOptionalKey(data, &obj.PaymentMint, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *ListingAccount) String() string {
	return fmt.Sprintf(
		"Listing{seller=%s,price=%d,payment_medium=%s,bump=%d}",
		base58.Encode(obj.Seller),
		obj.Price,
		obj.Medium(),
		obj.Bump,
	)
}
