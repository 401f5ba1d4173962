package program

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

// placeBet opens a bet account for the player and stakes amount into the
// vault. The bet account holds only its rent exempt minimum.
//
// Accounts: player (w, s), house, vault (w), bet (w), system_program
func (p *Program) placeBet(ctx *ledger.InvokeContext, log *logrus.Entry) error {
	args, err := dice.UnmarshalPlaceBetInstructionArgs(ctx.Data())
	if err != nil {
		return dice.ErrInstructionDidNotDeserialize
	}

	keys, err := accounts(ctx, 5)
	if err != nil {
		return err
	}
	player, house, vault, bet := keys[0], keys[1], keys[2], keys[3]

	log = log.WithFields(logrus.Fields{
		"player": keyField(player),
		"house":  keyField(house),
		"bet":    keyField(bet),
		"seed":   args.Seed.String(),
		"roll":   args.Roll,
		"amount": args.Amount,
	})

	if !ctx.IsSigner(player) {
		return dice.ErrConstraintSigner
	}

	minRoll := p.conf.minRoll.Get(ctx.Context())
	maxRoll := p.conf.maxRoll.Get(ctx.Context())
	if uint64(args.Roll) < minRoll || uint64(args.Roll) > maxRoll {
		return dice.ErrInvalidRoll
	}
	if args.Amount == 0 {
		return dice.ErrInvalidAmount
	}

	if _, err := loadVault(vault, house); err != nil {
		return err
	}

	expected, bump, err := dice.GetBetAddress(&dice.GetBetAddressArgs{
		Vault: vault,
		Seed:  args.Seed,
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, bet) {
		return dice.ErrConstraintSeeds
	}

	err = ctx.CreateAccount(player, bet, dice.BetAccountSize, ctx.ProgramID(), betSignerSeeds(vault, args.Seed, bump))
	if err != nil {
		return err
	}

	record := &dice.BetAccount{
		Bump:   bump,
		Roll:   args.Roll,
		Slot:   ctx.Slot(),
		Amount: args.Amount,
		Seed:   args.Seed,
		Player: player,
	}
	if err := ctx.SetData(bet, record.Marshal()); err != nil {
		return err
	}

	if err := ctx.Transfer(player, vault, args.Amount); err != nil {
		return err
	}

	log.Info("bet placed")
	return nil
}
