// Package program is the dice settlement program. It custodies each house's
// collateral in a vault, records wagers as bet accounts and settles them
// either by verifying the house's signature over the bet or by refunding the
// player once the cooldown has passed.
package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

const (
	metricsStructName = "dice.program"
)

type Program struct {
	log      *logrus.Entry
	conf     *conf
	verifier ProofVerifier
}

type Option func(*Program)

// WithProofVerifier replaces the default ed25519 sysvar verifier.
func WithProofVerifier(verifier ProofVerifier) Option {
	return func(p *Program) {
		p.verifier = verifier
	}
}

func New(configProvider ConfigProvider, opts ...Option) *Program {
	p := &Program{
		log:      logrus.StandardLogger().WithField("type", "dice/program"),
		conf:     configProvider(),
		verifier: NewEd25519SysvarVerifier(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process implements ledger.Program.Process
func (p *Program) Process(ctx *ledger.InvokeContext) (err error) {
	instructionType, _ := dice.GetInstructionType(ctx.Data())

	tracer := metrics.TraceMethodCall(ctx.Context(), metricsStructName, instructionType.String())
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := p.log.WithFields(logrus.Fields{
		"method":      "Process",
		"instruction": instructionType.String(),
		"slot":        ctx.Slot(),
	})
	log.Debug("processing instruction")

	switch instructionType {
	case dice.InstructionTypeInitialize:
		err = p.initialize(ctx, log)
	case dice.InstructionTypePlaceBet:
		err = p.placeBet(ctx, log)
	case dice.InstructionTypeResolveBet:
		err = p.resolveBet(ctx, log)
	case dice.InstructionTypeRefundBet:
		err = p.refundBet(ctx, log)
	default:
		err = dice.ErrInstructionFallbackNotFound
	}

	if err != nil {
		log.WithError(err).Info("instruction rejected")
	}
	return err
}

// accounts returns the first n account keys passed to the instruction.
func accounts(ctx *ledger.InvokeContext, n int) ([]ed25519.PublicKey, error) {
	metas := ctx.Accounts()
	if len(metas) < n {
		return nil, ledger.NewInstructionFailure(solana.InstructionErrorNotEnoughAccountKeys, "expected %d accounts, got %d", n, len(metas))
	}

	keys := make([]ed25519.PublicKey, n)
	for i := range keys {
		keys[i] = metas[i].PublicKey
	}
	return keys, nil
}

// loadVault checks address is the vault of house and returns its bump.
func loadVault(address, house ed25519.PublicKey) (uint8, error) {
	expected, bump, err := dice.GetVaultAddress(&dice.GetVaultAddressArgs{
		House: house,
	})
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(expected, address) {
		return 0, dice.ErrConstraintSeeds
	}
	return bump, nil
}

// loadBet reads the open bet at address, which must belong to vault.
func loadBet(ctx *ledger.InvokeContext, address, vault ed25519.PublicKey) (*dice.BetAccount, error) {
	account, err := ctx.GetAccount(address)
	if err == ledger.ErrAccountNotFound {
		return nil, dice.ErrAccountNotInitialized
	} else if err != nil {
		return nil, err
	}

	if !bytes.Equal(account.Owner, ctx.ProgramID()) {
		if account.IsSystemOwned() && len(account.Data) == 0 {
			return nil, dice.ErrAccountNotInitialized
		}
		return nil, dice.ErrAccountOwnedByWrongProgram
	}

	var bet dice.BetAccount
	if err := bet.Unmarshal(account.Data); err != nil {
		return nil, dice.ErrAccountDiscriminatorMismatch
	}

	if !dice.VerifyBetAddress(address, vault, bet.Seed, bet.Bump) {
		return nil, dice.ErrConstraintSeeds
	}

	return &bet, nil
}

// vaultSignerSeeds are the seeds the program signs with to move lamports out
// of a vault.
func vaultSignerSeeds(house ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{dice.VaultPrefix, house, {bump}}
}

func betSignerSeeds(vault ed25519.PublicKey, seed dice.Seed, bump uint8) [][]byte {
	return [][]byte{dice.BetPrefix, vault, seed[:], {bump}}
}

func keyField(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
