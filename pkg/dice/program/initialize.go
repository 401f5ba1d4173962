package program

import (
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

// initialize creates the house's vault and seeds it with collateral.
//
// Accounts: house (w, s), vault (w), system_program
func (p *Program) initialize(ctx *ledger.InvokeContext, log *logrus.Entry) error {
	args, err := dice.UnmarshalInitializeInstructionArgs(ctx.Data())
	if err != nil {
		return dice.ErrInstructionDidNotDeserialize
	}

	keys, err := accounts(ctx, 3)
	if err != nil {
		return err
	}
	house, vault := keys[0], keys[1]

	log = log.WithFields(logrus.Fields{
		"house":  keyField(house),
		"vault":  keyField(vault),
		"amount": args.Amount,
	})

	if !ctx.IsSigner(house) {
		return dice.ErrConstraintSigner
	}
	if _, err := loadVault(vault, house); err != nil {
		return err
	}
	if args.Amount == 0 {
		return dice.ErrInvalidAmount
	}

	existing, err := ctx.GetAccount(vault)
	if err == nil && existing.Lamports > 0 {
		return ledger.NewInstructionFailure(solana.InstructionErrorAccountAlreadyInitialized, "vault %s", keyField(vault))
	} else if err != nil && err != ledger.ErrAccountNotFound {
		return err
	}

	if err := ctx.Transfer(house, vault, args.Amount); err != nil {
		return err
	}

	log.Info("vault initialized")
	return nil
}
