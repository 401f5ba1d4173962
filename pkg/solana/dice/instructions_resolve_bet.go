package dice

import (
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/binary"
)

type ResolveBetInstructionArgs struct {
	// Signature is the house's signature over the bet record. It's encoded as
	// a Vec<u8> so that malformed lengths reach the program.
	Signature []byte
}

type ResolveBetInstructionAccounts struct {
	House  ed25519.PublicKey
	Player ed25519.PublicKey
	Vault  ed25519.PublicKey
	Bet    ed25519.PublicKey
}

func NewResolveBetInstruction(
	accounts *ResolveBetInstructionAccounts,
	args *ResolveBetInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(resolveBetInstructionDiscriminator)+
			4+len(args.Signature))

	putDiscriminator(data, resolveBetInstructionDiscriminator, &offset)
	binary.PutVec(data[offset:], args.Signature, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.House,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Player,
				IsWritable: true,
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
				PublicKey:  SYSVAR_INSTRUCTIONS_PUBKEY,
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

func UnmarshalResolveBetInstructionArgs(data []byte) (*ResolveBetInstructionArgs, error) {
	if len(data) < len(resolveBetInstructionDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	offset := len(resolveBetInstructionDiscriminator)

	var args ResolveBetInstructionArgs
	if !binary.GetVec(data[offset:], &args.Signature, &offset) {
		return nil, ErrInvalidInstructionData
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}
	return &args, nil
}
