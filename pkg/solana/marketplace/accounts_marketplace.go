package marketplace

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	MarketplaceAccountSize = (8 + //discriminator
		32 + // authority
		8 + // fee
		1 + // bump
		7) // padding
)

var MarketplaceAccountDiscriminator = []byte{byte(AccountTypeMarketplace), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// MarketplaceAccount is the singleton registry for the protocol: the
// authority that initialized it and the exchange fee configuration.
type MarketplaceAccount struct {
	Authority ed25519.PublicKey
	Fee       uint64
	Bump      uint8
}

func (obj *MarketplaceAccount) Marshal() []byte {
	data := make([]byte, MarketplaceAccountSize)

	var offset int
	putDiscriminator(data, MarketplaceAccountDiscriminator, &offset)
	putKey(data, obj.Authority, &offset)
	putUint64(data, obj.Fee, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *MarketplaceAccount) Unmarshal(data []byte) error {
	if len(data) < MarketplaceAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, MarketplaceAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Authority, &offset)
	getUint64(data, &obj.Fee, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *MarketplaceAccount) String() string {
	return fmt.Sprintf(
		"Marketplace{authority=%s,fee=%d,bump=%d}",
		base58.Encode(obj.Authority),
		obj.Fee,
		obj.Bump,
	)
}
