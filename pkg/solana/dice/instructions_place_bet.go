package dice

import (
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/binary"
)

const (
	PlaceBetInstructionArgsSize = (16 + // seed
		1 + // roll
		8) // amount
)

type PlaceBetInstructionArgs struct {
	Seed   Seed
	Roll   uint8
	Amount uint64
}

type PlaceBetInstructionAccounts struct {
	Player ed25519.PublicKey
	House  ed25519.PublicKey
	Vault  ed25519.PublicKey
	Bet    ed25519.PublicKey
}

func NewPlaceBetInstruction(
	accounts *PlaceBetInstructionAccounts,
	args *PlaceBetInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(placeBetInstructionDiscriminator)+
			PlaceBetInstructionArgsSize)

	putDiscriminator(data, placeBetInstructionDiscriminator, &offset)
	binary.PutBytes(data[offset:], args.Seed[:], len(args.Seed), &offset)
	binary.PutUint8(data[offset:], args.Roll, &offset)
	binary.PutUint64(data[offset:], args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Player,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.House,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Bet,
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

func UnmarshalPlaceBetInstructionArgs(data []byte) (*PlaceBetInstructionArgs, error) {
	if len(data) != len(placeBetInstructionDiscriminator)+PlaceBetInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}

	offset := len(placeBetInstructionDiscriminator)

	var args PlaceBetInstructionArgs
	binary.GetBytes(data[offset:], args.Seed[:], &offset)
	binary.GetUint8(data[offset:], &args.Roll, &offset)
	binary.GetUint64(data[offset:], &args.Amount, &offset)
	return &args, nil
}
