package program

import (
	"bytes"
	"math/bits"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

// refundBet returns the stake of a bet the house never resolved, once the
// refund cooldown has elapsed since it was placed, and closes the bet.
//
// Accounts: player (w, s), house, vault (w), bet (w), system_program
func (p *Program) refundBet(ctx *ledger.InvokeContext, log *logrus.Entry) error {
	if _, err := dice.UnmarshalRefundBetInstructionArgs(ctx.Data()); err != nil {
		return dice.ErrInstructionDidNotDeserialize
	}

	keys, err := accounts(ctx, 5)
	if err != nil {
		return err
	}
	player, house, vault, betAddress := keys[0], keys[1], keys[2], keys[3]

	log = log.WithFields(logrus.Fields{
		"player": keyField(player),
		"house":  keyField(house),
		"bet":    keyField(betAddress),
	})

	if !ctx.IsSigner(player) {
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

	cooldown := p.conf.refundCooldownSlots.Get(ctx.Context())
	refundableAt, carry := bits.Add64(bet.Slot, cooldown, 0)
	if carry != 0 {
		return dice.ErrArithmeticOverflow
	}
	if ctx.Slot() < refundableAt {
		log.WithField("refundable_at", refundableAt).Debug("refund cooldown not elapsed")
		return dice.ErrRefundCooldownNotElapsed
	}

	if err := ctx.Transfer(vault, player, bet.Amount, vaultSignerSeeds(house, vaultBump)); err != nil {
		return err
	}
	if err := ctx.Close(betAddress, player); err != nil {
		return err
	}

	metrics.RecordCount(ctx.Context(), betRefundedMetricName, 1)
	log.WithField("amount", bet.Amount).Info("bet refunded")
	return nil
}
