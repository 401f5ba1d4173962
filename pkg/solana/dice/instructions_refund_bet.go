package dice

import (
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/solana"
)

const (
	RefundBetInstructionArgsSize = 0
)

type RefundBetInstructionArgs struct {
}

type RefundBetInstructionAccounts struct {
	Player ed25519.PublicKey
	House  ed25519.PublicKey
	Vault  ed25519.PublicKey
	Bet    ed25519.PublicKey
}

func NewRefundBetInstruction(
	accounts *RefundBetInstructionAccounts,
	args *RefundBetInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(refundBetInstructionDiscriminator)+
			RefundBetInstructionArgsSize)

	putDiscriminator(data, refundBetInstructionDiscriminator, &offset)

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

func UnmarshalRefundBetInstructionArgs(data []byte) (*RefundBetInstructionArgs, error) {
	if len(data) != len(refundBetInstructionDiscriminator)+RefundBetInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	return &RefundBetInstructionArgs{}, nil
}
