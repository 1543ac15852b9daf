package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tokensea/marketplace-server/pkg/solana"
)

const (
	ListNftInstructionArgsSize = (8 + // price
		33) // payment_mint option
)

type ListNftInstructionArgs struct {
	Price   uint64
	Payment PaymentMedium
}

type ListNftInstructionAccounts struct {
	Listing            ed25519.PublicKey
	Escrow             ed25519.PublicKey
	SellerTokenAccount ed25519.PublicKey
	Mint               ed25519.PublicKey
	Seller             ed25519.PublicKey
}

func NewListNftInstruction(
	accounts *ListNftInstructionAccounts,
	args *ListNftInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+ListNftInstructionArgsSize)

	putInstructionType(data, InstructionTypeListNft, &offset)
	putUint64(data, args.Price, &offset)
	putOptionalKey(data, args.Payment.Mint(), &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Listing,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.SellerTokenAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Seller,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledListNft struct {
	Accounts ListNftInstructionAccounts
	Args     ListNftInstructionArgs
}

func DecompileListNft(i solana.Instruction) (*DecompiledListNft, error) {
	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, ErrInvalidProgram
	}
	if len(i.Data) != 1+ListNftInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if InstructionType(i.Data[0]) != InstructionTypeListNft {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 7 {
		return nil, ErrInvalidAccountData
	}
	if !i.Accounts[4].IsSigner {
		return nil, solana.ErrMissingSigner
	}

	var decompiled DecompiledListNft
	offset := 1
	getUint64(i.Data, &decompiled.Args.Price, &offset)

	var paymentMint ed25519.PublicKey
	getOptionalKey(i.Data, &paymentMint, &offset)
	if len(paymentMint) > 0 {
		decompiled.Args.Payment = TokenPaymentMedium(paymentMint)
	} else {
		decompiled.Args.Payment = NativePaymentMedium()
	}

	decompiled.Accounts.Listing = i.Accounts[0].PublicKey
	decompiled.Accounts.Escrow = i.Accounts[1].PublicKey
	decompiled.Accounts.SellerTokenAccount = i.Accounts[2].PublicKey
	decompiled.Accounts.Mint = i.Accounts[3].PublicKey
	decompiled.Accounts.Seller = i.Accounts[4].PublicKey

	return &decompiled, nil
}
