package ledger

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokensea/marketplace-server/pkg/testutil"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	l := New()
	keys := testutil.GenerateSolanaKeys(t, 3)
	payer, address, owner := keys[0], keys[1], keys[2]

	require.NoError(t, l.Fund(ctx, payer, 10_000_000_000))

	rent := MinimumBalanceForRentExemption(64)
	require.NoError(t, l.Execute(ctx, func(v *View) error {
		_, err := v.CreateAccount(payer, address, owner, 64)
		return err
	}))

	account, err := l.GetAccount(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, []byte(owner), []byte(account.Owner))
	assert.Equal(t, rent, account.Lamports)
	assert.Len(t, account.Data, 64)

	payerBalance, err := l.GetBalance(ctx, payer)
	require.NoError(t, err)
	assert.Equal(t, 10_000_000_000-rent, payerBalance)

	err = l.Execute(ctx, func(v *View) error {
		_, err := v.CreateAccount(payer, address, owner, 64)
		return err
	})
	assert.Equal(t, ErrAccountExists, errors.Cause(err))
}

func TestCreateAccount_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	l := New()
	keys := testutil.GenerateSolanaKeys(t, 3)

	require.NoError(t, l.Fund(ctx, keys[0], 1))

	err := l.Execute(ctx, func(v *View) error {
		_, err := v.CreateAccount(keys[0], keys[1], keys[2], 64)
		return err
	})
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))

	// The failed creation left nothing behind.
	_, err = l.GetAccount(ctx, keys[1])
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := New()
	keys := testutil.GenerateSolanaKeys(t, 2)

	require.NoError(t, l.Fund(ctx, keys[0], 5_000))

	require.NoError(t, l.Execute(ctx, func(v *View) error {
		return v.Transfer(keys[0], keys[1], 3_000)
	}))

	fromBalance, err := l.GetBalance(ctx, keys[0])
	require.NoError(t, err)
	toBalance, err := l.GetBalance(ctx, keys[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), fromBalance)
	assert.Equal(t, uint64(3_000), toBalance)

	err = l.Execute(ctx, func(v *View) error {
		return v.Transfer(keys[0], keys[1], 3_000)
	})
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))
}

func TestCloseAccount(t *testing.T) {
	ctx := context.Background()
	l := New()
	keys := testutil.GenerateSolanaKeys(t, 3)
	payer, address, destination := keys[0], keys[1], keys[2]

	require.NoError(t, l.Fund(ctx, payer, 10_000_000_000))
	require.NoError(t, l.Execute(ctx, func(v *View) error {
		_, err := v.CreateAccount(payer, address, SystemOwner, 32)
		return err
	}))

	rent := MinimumBalanceForRentExemption(32)
	require.NoError(t, l.Execute(ctx, func(v *View) error {
		return v.CloseAccount(address, destination)
	}))

	_, err := l.GetAccount(ctx, address)
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))

	destinationBalance, err := l.GetBalance(ctx, destination)
	require.NoError(t, err)
	assert.Equal(t, rent, destinationBalance)
}

func TestExecute_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	l := New()
	keys := testutil.GenerateSolanaKeys(t, 2)

	require.NoError(t, l.Fund(ctx, keys[0], 5_000))

	failure := errors.New("validation failed after movement")
	err := l.Execute(ctx, func(v *View) error {
		if err := v.Transfer(keys[0], keys[1], 4_000); err != nil {
			return err
		}
		return failure
	})
	assert.Equal(t, failure, err)

	// Nothing moved: the staged transfer never committed.
	fromBalance, err := l.GetBalance(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), fromBalance)

	_, err = l.GetAccount(ctx, keys[1])
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))
}
