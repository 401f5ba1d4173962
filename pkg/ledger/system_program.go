package ledger

import (
	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/system"
)

// systemProgram is the native system program. Only the commands the dice
// flows need are supported.
type systemProgram struct{}

func (systemProgram) Process(ctx *InvokeContext) error {
	command, err := system.GetCommand(ctx.Data())
	if err != nil {
		return NewInstructionFailure(solana.InstructionErrorInvalidInstructionData, "%v", err)
	}

	accounts := ctx.Accounts()
	if len(accounts) < 2 {
		return NewInstructionFailure(solana.InstructionErrorNotEnoughAccountKeys, "system command %d", command)
	}

	switch command {
	case system.CommandTransfer:
		lamports, err := system.UnmarshalTransferArgs(ctx.Data())
		if err != nil {
			return NewInstructionFailure(solana.InstructionErrorInvalidInstructionData, "%v", err)
		}
		return ctx.Transfer(accounts[0].PublicKey, accounts[1].PublicKey, lamports)
	case system.CommandCreateAccount:
		args, err := system.UnmarshalCreateAccountArgs(ctx.Data())
		if err != nil {
			return NewInstructionFailure(solana.InstructionErrorInvalidInstructionData, "%v", err)
		}
		return ctx.createAccount(accounts[0].PublicKey, accounts[1].PublicKey, args.Lamports, args.Size, args.Owner)
	default:
		return NewInstructionFailure(solana.InstructionErrorInvalidInstructionData, "unsupported system command %d", command)
	}
}
