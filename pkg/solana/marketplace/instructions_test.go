package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokensea/marketplace-server/pkg/testutil"
)

func TestInitializeMarketplaceInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	instruction := NewInitializeMarketplaceInstruction(
		&InitializeMarketplaceInstructionAccounts{
			Marketplace: keys[0],
			Authority:   keys[1],
		},
		&InitializeMarketplaceInstructionArgs{
			Fee: 250,
		},
	)

	instructionType, err := GetInstructionType(instruction)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeInitializeMarketplace, instructionType)

	assert.True(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	decompiled, err := DecompileInitializeMarketplace(instruction)
	require.NoError(t, err)
	assert.Equal(t, []byte(keys[0]), []byte(decompiled.Accounts.Marketplace))
	assert.Equal(t, []byte(keys[1]), []byte(decompiled.Accounts.Authority))
	assert.Equal(t, uint64(250), decompiled.Args.Fee)

	instruction.Accounts[1].IsSigner = false
	_, err = DecompileInitializeMarketplace(instruction)
	assert.Error(t, err)

	instruction.Program = keys[0]
	_, err = DecompileInitializeMarketplace(instruction)
	assert.Equal(t, ErrInvalidProgram, err)
}

func TestListNftInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 6)

	instruction := NewListNftInstruction(
		&ListNftInstructionAccounts{
			Listing:            keys[0],
			Escrow:             keys[1],
			SellerTokenAccount: keys[2],
			Mint:               keys[3],
			Seller:             keys[4],
		},
		&ListNftInstructionArgs{
			Price:   10_000_000,
			Payment: TokenPaymentMedium(keys[5]),
		},
	)

	decompiled, err := DecompileListNft(instruction)
	require.NoError(t, err)
	assert.Equal(t, []byte(keys[0]), []byte(decompiled.Accounts.Listing))
	assert.Equal(t, []byte(keys[1]), []byte(decompiled.Accounts.Escrow))
	assert.Equal(t, []byte(keys[2]), []byte(decompiled.Accounts.SellerTokenAccount))
	assert.Equal(t, []byte(keys[3]), []byte(decompiled.Accounts.Mint))
	assert.Equal(t, []byte(keys[4]), []byte(decompiled.Accounts.Seller))
	assert.Equal(t, uint64(10_000_000), decompiled.Args.Price)
	assert.True(t, decompiled.Args.Payment.Equals(TokenPaymentMedium(keys[5])))

	instruction.Accounts[4].IsSigner = false
	_, err = DecompileListNft(instruction)
	assert.Error(t, err)
}

func TestListNftInstruction_NativePayment(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 5)

	instruction := NewListNftInstruction(
		&ListNftInstructionAccounts{
			Listing:            keys[0],
			Escrow:             keys[1],
			SellerTokenAccount: keys[2],
			Mint:               keys[3],
			Seller:             keys[4],
		},
		&ListNftInstructionArgs{
			Price:   1_000_000,
			Payment: NativePaymentMedium(),
		},
	)

	decompiled, err := DecompileListNft(instruction)
	require.NoError(t, err)
	assert.True(t, decompiled.Args.Payment.IsNative())
}

func TestBuyNftInstruction_TokenPayment(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 9)

	instruction := NewBuyNftInstruction(
		&BuyNftInstructionAccounts{
			Listing:              keys[0],
			Escrow:               keys[1],
			BuyerTokenAccount:    keys[2],
			Mint:                 keys[3],
			Buyer:                keys[4],
			Seller:               keys[5],
			BuyerPaymentAccount:  keys[6],
			SellerPaymentAccount: keys[7],
			PaymentMint:          keys[8],
		},
	)

	require.Len(t, instruction.Accounts, 11)

	decompiled, err := DecompileBuyNft(instruction)
	require.NoError(t, err)
	assert.Equal(t, []byte(keys[4]), []byte(decompiled.Accounts.Buyer))
	assert.Equal(t, []byte(keys[5]), []byte(decompiled.Accounts.Seller))
	assert.Equal(t, []byte(keys[6]), []byte(decompiled.Accounts.BuyerPaymentAccount))
	assert.Equal(t, []byte(keys[7]), []byte(decompiled.Accounts.SellerPaymentAccount))
	assert.True(t, decompiled.Payment.Equals(TokenPaymentMedium(keys[8])))
}

func TestBuyNftInstruction_NativePayment(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 6)

	instruction := NewBuyNftInstruction(
		&BuyNftInstructionAccounts{
			Listing:           keys[0],
			Escrow:            keys[1],
			BuyerTokenAccount: keys[2],
			Mint:              keys[3],
			Buyer:             keys[4],
			Seller:            keys[5],
		},
	)

	require.Len(t, instruction.Accounts, 8)

	decompiled, err := DecompileBuyNft(instruction)
	require.NoError(t, err)
	assert.True(t, decompiled.Payment.IsNative())
	assert.Empty(t, decompiled.Accounts.BuyerPaymentAccount)
	assert.Equal(t, []byte(keys[4]), []byte(decompiled.Accounts.Buyer))
	assert.Equal(t, []byte(keys[5]), []byte(decompiled.Accounts.Seller))

	// A truncated account list is rejected outright.
	instruction.Accounts = instruction.Accounts[:7]
	_, err = DecompileBuyNft(instruction)
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestCancelNftInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 5)

	instruction := NewCancelNftInstruction(
		&CancelNftInstructionAccounts{
			Listing:            keys[0],
			Escrow:             keys[1],
			SellerTokenAccount: keys[2],
			Mint:               keys[3],
			Seller:             keys[4],
		},
	)

	decompiled, err := DecompileCancelNft(instruction)
	require.NoError(t, err)
	assert.Equal(t, []byte(keys[3]), []byte(decompiled.Accounts.Mint))
	assert.Equal(t, []byte(keys[4]), []byte(decompiled.Accounts.Seller))

	instruction.Data = []byte{byte(InstructionTypeBuyNft)}
	_, err = DecompileCancelNft(instruction)
	assert.Equal(t, ErrInvalidInstructionData, err)
}
