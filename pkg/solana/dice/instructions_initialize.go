package dice

import (
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/binary"
)

const (
	InitializeInstructionArgsSize = 8 // amount
)

type InitializeInstructionArgs struct {
	Amount uint64
}

type InitializeInstructionAccounts struct {
	House ed25519.PublicKey
	Vault ed25519.PublicKey
}

func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(initializeInstructionDiscriminator)+
			InitializeInstructionArgsSize)

	putDiscriminator(data, initializeInstructionDiscriminator, &offset)
	binary.PutUint64(data[offset:], args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.House,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
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

func UnmarshalInitializeInstructionArgs(data []byte) (*InitializeInstructionArgs, error) {
	if len(data) != len(initializeInstructionDiscriminator)+InitializeInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}

	offset := len(initializeInstructionDiscriminator)

	var args InitializeInstructionArgs
	binary.GetUint64(data[offset:], &args.Amount, &offset)
	return &args, nil
}
