package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tokensea/marketplace-server/pkg/solana"
)

type CancelNftInstructionAccounts struct {
	Listing            ed25519.PublicKey
	Escrow             ed25519.PublicKey
	SellerTokenAccount ed25519.PublicKey
	Mint               ed25519.PublicKey
	Seller             ed25519.PublicKey
}

func NewCancelNftInstruction(
	accounts *CancelNftInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeCancelNft, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,
		Data:    data,

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
		},
	}
}

type DecompiledCancelNft struct {
	Accounts CancelNftInstructionAccounts
}

func DecompileCancelNft(i solana.Instruction) (*DecompiledCancelNft, error) {
	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, ErrInvalidProgram
	}
	if len(i.Data) != 1 || InstructionType(i.Data[0]) != InstructionTypeCancelNft {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 6 {
		return nil, ErrInvalidAccountData
	}
	if !i.Accounts[4].IsSigner {
		return nil, solana.ErrMissingSigner
	}

	var decompiled DecompiledCancelNft
	decompiled.Accounts.Listing = i.Accounts[0].PublicKey
	decompiled.Accounts.Escrow = i.Accounts[1].PublicKey
	decompiled.Accounts.SellerTokenAccount = i.Accounts[2].PublicKey
	decompiled.Accounts.Mint = i.Accounts[3].PublicKey
	decompiled.Accounts.Seller = i.Accounts[4].PublicKey

	return &decompiled, nil
}

// GetInstructionType peeks at an instruction's discriminant without
// decompiling its accounts.
func GetInstructionType(i solana.Instruction) (InstructionType, error) {
	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return Unknown, ErrInvalidProgram
	}
	if len(i.Data) == 0 {
		return Unknown, ErrInvalidInstructionData
	}

	var instructionType InstructionType
	var offset int
	getInstructionType(i.Data, &instructionType, &offset)
	return instructionType, nil
}
