// Package ledger is an in-memory account ledger standing in for the chain
// runtime: account creation and closure, native balance transfers, and SPL
// token operations, applied one atomic transition at a time.
package ledger

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAccountData  = errors.New("invalid account data")
)

// SystemOwner marks accounts holding plain native balances.
var SystemOwner = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))

// Account is a single ledger record: a native balance plus the owning
// program's serialized state.
type Account struct {
	Address  ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte
}

func (a *Account) clone() *Account {
	cloned := &Account{
		Address:  a.Address,
		Owner:    a.Owner,
		Lamports: a.Lamports,
	}
	if a.Data != nil {
		cloned.Data = make([]byte, len(a.Data))
		copy(cloned.Data, a.Data)
	}
	return cloned
}

// Ledger is the committed account set. All mutation flows through Execute,
// which serializes transitions and commits their effects all or nothing.
type Ledger struct {
	mu       sync.Mutex
	accounts *treemap.Map
}

func New() *Ledger {
	return &Ledger{
		accounts: treemap.NewWithStringComparator(),
	}
}

// Execute runs fn against a staged view of the ledger. Mutations made
// through the view land in a write set that is committed only if fn returns
// nil; any error leaves every committed account untouched. Transitions are
// serialized by the ledger, which trivially satisfies the requirement that
// transitions over overlapping accounts never interleave.
func (l *Ledger) Execute(ctx context.Context, fn func(v *View) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	v := &View{
		base:   l.accounts,
		staged: make(map[string]*Account),
	}

	if err := fn(v); err != nil {
		return err
	}

	for k, account := range v.staged {
		if account == nil {
			l.accounts.Remove(k)
		} else {
			l.accounts.Put(k, account)
		}
	}
	return nil
}

// GetAccount returns a copy of a committed account.
func (l *Ledger) GetAccount(ctx context.Context, address ed25519.PublicKey) (account *Account, err error) {
	err = l.Execute(ctx, func(v *View) error {
		account, err = v.GetAccount(address)
		return err
	})
	return account, err
}

// GetBalance returns the committed native balance of an account.
func (l *Ledger) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	account, err := l.GetAccount(ctx, address)
	if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

// Fund credits lamports to an account, creating it if needed. This is the
// local stand-in for an airdrop and is intended for provisioning wallets.
func (l *Ledger) Fund(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	return l.Execute(ctx, func(v *View) error {
		v.credit(address, lamports)
		return nil
	})
}

// View is the staged state a single transition executes against.
type View struct {
	base   *treemap.Map
	staged map[string]*Account
}

// load pulls an account into the write set, copying it out of the committed
// state on first touch. The second return is false if the account does not
// exist (or was deleted earlier in the transition).
func (v *View) load(address ed25519.PublicKey) (*Account, bool) {
	k := base58.Encode(address)
	if account, ok := v.staged[k]; ok {
		return account, account != nil
	}

	if val, found := v.base.Get(k); found {
		account := val.(*Account).clone()
		v.staged[k] = account
		return account, true
	}
	return nil, false
}

func (v *View) put(account *Account) {
	v.staged[base58.Encode(account.Address)] = account
}

func (v *View) delete(address ed25519.PublicKey) {
	v.staged[base58.Encode(address)] = nil
}

func (v *View) credit(address ed25519.PublicKey, lamports uint64) *Account {
	account, ok := v.load(address)
	if !ok {
		account = &Account{
			Address: address,
			Owner:   SystemOwner,
		}
		v.put(account)
	}
	account.Lamports += lamports
	return account
}

func (v *View) debit(address ed25519.PublicKey, lamports uint64) error {
	account, ok := v.load(address)
	if !ok {
		return errors.Wrapf(ErrAccountNotFound, "debit from %s", base58.Encode(address))
	}
	if account.Lamports < lamports {
		return ErrInsufficientBalance
	}
	account.Lamports -= lamports
	return nil
}

// GetAccount returns the account at address, staged for mutation.
func (v *View) GetAccount(address ed25519.PublicKey) (*Account, error) {
	account, ok := v.load(address)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// CreateAccount allocates a new account at address with the given owner and
// data size, funding its rent-exempt reserve from payer.
func (v *View) CreateAccount(payer, address, owner ed25519.PublicKey, space int) (*Account, error) {
	if _, ok := v.load(address); ok {
		return nil, ErrAccountExists
	}

	rent := MinimumBalanceForRentExemption(space)
	if err := v.debit(payer, rent); err != nil {
		return nil, err
	}

	account := &Account{
		Address:  address,
		Owner:    owner,
		Lamports: rent,
		Data:     make([]byte, space),
	}
	v.put(account)
	return account, nil
}

// Transfer moves native balance between two accounts.
func (v *View) Transfer(from, to ed25519.PublicKey, lamports uint64) error {
	if err := v.debit(from, lamports); err != nil {
		return err
	}
	v.credit(to, lamports)
	return nil
}

// CloseAccount deletes an account and releases its entire native balance,
// rent-exempt reserve included, to destination.
func (v *View) CloseAccount(address, destination ed25519.PublicKey) error {
	account, ok := v.load(address)
	if !ok {
		return ErrAccountNotFound
	}

	v.credit(destination, account.Lamports)
	v.delete(address)
	return nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
