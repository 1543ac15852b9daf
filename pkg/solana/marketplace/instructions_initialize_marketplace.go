package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tokensea/marketplace-server/pkg/solana"
)

const (
	InitializeMarketplaceInstructionArgsSize = 8 // fee
)

type InitializeMarketplaceInstructionArgs struct {
	Fee uint64
}

type InitializeMarketplaceInstructionAccounts struct {
	Marketplace ed25519.PublicKey
	Authority   ed25519.PublicKey
}

func NewInitializeMarketplaceInstruction(
	accounts *InitializeMarketplaceInstructionAccounts,
	args *InitializeMarketplaceInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+InitializeMarketplaceInstructionArgsSize)

	putInstructionType(data, InstructionTypeInitializeMarketplace, &offset)
	putUint64(data, args.Fee, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Marketplace,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledInitializeMarketplace struct {
	Accounts InitializeMarketplaceInstructionAccounts
	Args     InitializeMarketplaceInstructionArgs
}

func DecompileInitializeMarketplace(i solana.Instruction) (*DecompiledInitializeMarketplace, error) {
	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, ErrInvalidProgram
	}
	if len(i.Data) != 1+InitializeMarketplaceInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if InstructionType(i.Data[0]) != InstructionTypeInitializeMarketplace {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 3 {
		return nil, ErrInvalidAccountData
	}
	if !i.Accounts[1].IsSigner {
		return nil, solana.ErrMissingSigner
	}

	var decompiled DecompiledInitializeMarketplace
	offset := 1
	getUint64(i.Data, &decompiled.Args.Fee, &offset)

	decompiled.Accounts.Marketplace = i.Accounts[0].PublicKey
	decompiled.Accounts.Authority = i.Accounts[1].PublicKey

	return &decompiled, nil
}
