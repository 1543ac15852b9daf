package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tokensea/marketplace-server/pkg/solana"
)

type BuyNftInstructionAccounts struct {
	Listing           ed25519.PublicKey
	Escrow            ed25519.PublicKey
	BuyerTokenAccount ed25519.PublicKey
	Mint              ed25519.PublicKey
	Buyer             ed25519.PublicKey
	Seller            ed25519.PublicKey

	// Present only when the listing is paid in a fungible token. The buyer
	// pays from BuyerPaymentAccount into SellerPaymentAccount, both token
	// accounts of PaymentMint.
	BuyerPaymentAccount  ed25519.PublicKey
	SellerPaymentAccount ed25519.PublicKey
	PaymentMint          ed25519.PublicKey
}

func NewBuyNftInstruction(
	accounts *BuyNftInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeBuyNft, &offset)

	metas := []solana.AccountMeta{
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
			PublicKey:  accounts.BuyerTokenAccount,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Mint,
			IsWritable: false,
			IsSigner:   false,
		},
	}

	// The payment account triple is appended only on the fungible token
	// path, so the account count distinguishes the two payment media.
	if len(accounts.PaymentMint) > 0 {
		metas = append(
			metas,
			solana.AccountMeta{
				PublicKey:  accounts.BuyerPaymentAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			solana.AccountMeta{
				PublicKey:  accounts.SellerPaymentAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			solana.AccountMeta{
				PublicKey:  accounts.PaymentMint,
				IsWritable: false,
				IsSigner:   false,
			},
		)
	}

	metas = append(
		metas,
		solana.AccountMeta{
			PublicKey:  accounts.Buyer,
			IsWritable: true,
			IsSigner:   true,
		},
		solana.AccountMeta{
			PublicKey:  accounts.Seller,
			IsWritable: true,
			IsSigner:   false,
		},
		solana.AccountMeta{
			PublicKey:  SPL_TOKEN_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		solana.AccountMeta{
			PublicKey:  SYSTEM_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
	)

	return solana.Instruction{
		Program:  PROGRAM_ADDRESS,
		Data:     data,
		Accounts: metas,
	}
}

type DecompiledBuyNft struct {
	Accounts BuyNftInstructionAccounts

	// Payment is the medium the buyer claims the listing is paid in,
	// reconstructed from the supplied accounts.
	Payment PaymentMedium
}

func DecompileBuyNft(i solana.Instruction) (*DecompiledBuyNft, error) {
	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, ErrInvalidProgram
	}
	if len(i.Data) != 1 || InstructionType(i.Data[0]) != InstructionTypeBuyNft {
		return nil, ErrInvalidInstructionData
	}

	var decompiled DecompiledBuyNft
	switch len(i.Accounts) {
	case 8:
		decompiled.Payment = NativePaymentMedium()
	case 11:
		decompiled.Accounts.BuyerPaymentAccount = i.Accounts[4].PublicKey
		decompiled.Accounts.SellerPaymentAccount = i.Accounts[5].PublicKey
		decompiled.Accounts.PaymentMint = i.Accounts[6].PublicKey
		decompiled.Payment = TokenPaymentMedium(decompiled.Accounts.PaymentMint)
	default:
		return nil, ErrInvalidAccountData
	}

	buyerIndex := len(i.Accounts) - 4
	if !i.Accounts[buyerIndex].IsSigner {
		return nil, solana.ErrMissingSigner
	}

	decompiled.Accounts.Listing = i.Accounts[0].PublicKey
	decompiled.Accounts.Escrow = i.Accounts[1].PublicKey
	decompiled.Accounts.BuyerTokenAccount = i.Accounts[2].PublicKey
	decompiled.Accounts.Mint = i.Accounts[3].PublicKey
	decompiled.Accounts.Buyer = i.Accounts[buyerIndex].PublicKey
	decompiled.Accounts.Seller = i.Accounts[buyerIndex+1].PublicKey

	return &decompiled, nil
}
