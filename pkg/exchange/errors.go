package exchange

import (
	"github.com/pkg/errors"
)

// Transition errors. All are terminal for the submitted transition: nothing
// is retried and a failed transition leaves every account untouched.
// Insufficient balance failures surface unmodified from pkg/ledger.
var (
	ErrInvalidPrice          = errors.New("price must be greater than zero")
	ErrAlreadyInitialized    = errors.New("marketplace already initialized")
	ErrAlreadyListed         = errors.New("nft is already listed")
	ErrListingNotFound       = errors.New("listing not found")
	ErrInvalidSeller         = errors.New("invalid seller address provided")
	ErrPaymentMediumMismatch = errors.New("payment medium does not match listing")
	ErrInvalidMint           = errors.New("invalid nft mint")
	ErrAddressMismatch       = errors.New("account does not match derived address")
)
