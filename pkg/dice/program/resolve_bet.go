package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

// resolveBet settles a bet using the house's signature over it as the source
// of randomness. The signature must be proven by the verification instruction
// preceding this one. Winners are paid from the vault and the bet is always
// closed to the player.
//
// Accounts: house (s), player (w), vault (w), bet (w), instructions_sysvar, system_program
func (p *Program) resolveBet(ctx *ledger.InvokeContext, log *logrus.Entry) error {
	args, err := dice.UnmarshalResolveBetInstructionArgs(ctx.Data())
	if err != nil {
		return dice.ErrInstructionDidNotDeserialize
	}

	keys, err := accounts(ctx, 6)
	if err != nil {
		return err
	}
	house, player, vault, betAddress, instructionsSysvar := keys[0], keys[1], keys[2], keys[3], keys[4]

	log = log.WithFields(logrus.Fields{
		"house":  keyField(house),
		"player": keyField(player),
		"bet":    keyField(betAddress),
	})

	if !ctx.IsSigner(house) {
		return dice.ErrConstraintSigner
	}

	vaultBump, err := loadVault(vault, house)
	if err != nil {
		return err
	}

	bet, err := loadBet(ctx, betAddress, vault)
	if err != nil {
		return err
	}
	if !bytes.Equal(bet.Player, player) {
		return dice.ErrPlayerMismatch
	}

	if len(args.Signature) != ed25519.SignatureSize {
		return dice.ErrInvalidSignatureLength
	}

	err = p.verifier.Verify(ctx, instructionsSysvar, house, args.Signature, bet.Message())
	if err != nil {
		return err
	}

	outcome := Outcome(args.Signature)
	log = log.WithFields(logrus.Fields{
		"outcome": outcome,
		"roll":    bet.Roll,
		"amount":  bet.Amount,
	})

	var paid uint64
	if IsWin(outcome, bet.Roll) {
		payout, err := Payout(bet.Amount, bet.Roll, p.conf.houseEdgeBps.Get(ctx.Context()))
		if err != nil {
			return err
		}

		var available uint64
		vaultAccount, err := ctx.GetAccount(vault)
		if err == nil {
			available = vaultAccount.Lamports
		} else if err != ledger.ErrAccountNotFound {
			return err
		}

		paid = payout
		if paid > available {
			log.WithField("payout", payout).Warn("vault cannot cover payout")
			paid = available
		}

		if paid > 0 {
			if err := ctx.Transfer(vault, player, paid, vaultSignerSeeds(house, vaultBump)); err != nil {
				return err
			}
		}
	}

	if err := ctx.Close(betAddress, player); err != nil {
		return err
	}

	metrics.RecordCount(ctx.Context(), betResolvedMetricName, 1)
	log.WithField("payout", paid).Info("bet resolved")
	return nil
}
