package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// PaymentMedium is the medium a listing is paid in: either the ledger's
// native balance unit, or a fungible token identified by its mint. The
// variant replaces the presence-or-absence null checks the on-chain account
// layout uses, so exchange logic can branch on it exhaustively.
type PaymentMedium struct {
	mint ed25519.PublicKey
}

// NativePaymentMedium is payment in lamports, moved directly between the
// buyer and seller balances.
func NativePaymentMedium() PaymentMedium {
	return PaymentMedium{}
}

// TokenPaymentMedium is payment in units of the provided fungible token
// mint, moved between the parties' token accounts for that mint.
func TokenPaymentMedium(mint ed25519.PublicKey) PaymentMedium {
	return PaymentMedium{mint: mint}
}

func (m PaymentMedium) IsNative() bool {
	return len(m.mint) == 0
}

// Mint returns the payment mint, or nil for the native medium.
func (m PaymentMedium) Mint() ed25519.PublicKey {
	return m.mint
}

func (m PaymentMedium) Equals(other PaymentMedium) bool {
	return bytes.Equal(m.mint, other.mint)
}

func (m PaymentMedium) String() string {
	if m.IsNative() {
		return "native"
	}
	return base58.Encode(m.mint)
}
