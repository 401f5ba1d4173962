package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"
	"math/bits"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana"
	ed25519program "github.com/code-payments/code-dice/pkg/solana/ed25519"
	"github.com/code-payments/code-dice/pkg/solana/system"
	"github.com/code-payments/code-dice/pkg/solana/sysvar"
)

const (
	metricsStructName = "ledger.bank"
)

var (
	ErrSlotRegression = errors.New("slot cannot move backwards")
)

// Bank executes transactions against an account store. Transactions are
// applied one at a time and either commit every change or none.
type Bank struct {
	log   *logrus.Entry
	store Store
	rent  Rent

	mu       sync.Mutex
	slot     uint64
	programs map[string]Program
}

type Option func(*Bank)

// WithRent overrides the default rent configuration.
func WithRent(rent Rent) Option {
	return func(b *Bank) {
		b.rent = rent
	}
}

// WithSlot sets the starting slot.
func WithSlot(slot uint64) Option {
	return func(b *Bank) {
		b.slot = slot
	}
}

func NewBank(store Store, opts ...Option) *Bank {
	b := &Bank{
		log:      logrus.StandardLogger().WithField("type", "ledger/bank"),
		store:    store,
		rent:     DefaultRent,
		slot:     1,
		programs: make(map[string]Program),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.programs[base58.Encode(system.ProgramKey[:])] = systemProgram{}

	return b
}

// RegisterProgram deploys program at id, replacing any existing program.
func (b *Bank) RegisterProgram(id ed25519.PublicKey, program Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.programs[base58.Encode(id)] = program
}

func (b *Bank) Rent() Rent {
	return b.rent
}

func (b *Bank) Slot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.slot
}

// WarpToSlot moves the ledger to slot, which can't be behind the current
// slot.
func (b *Bank) WarpToSlot(slot uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slot < b.slot {
		return ErrSlotRegression
	}
	b.slot = slot
	return nil
}

// AdvanceSlots moves the ledger forward by n slots and returns the new slot.
// The slot saturates at math.MaxUint64.
func (b *Bank) AdvanceSlots(n uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, carry := bits.Add64(b.slot, n, 0)
	if carry != 0 {
		next = math.MaxUint64
	}
	b.slot = next
	return b.slot
}

// RestoreSlot moves the ledger forward to the latest slot recorded in the
// store and returns the resulting slot. It never moves the ledger backwards.
func (b *Bank) RestoreSlot(ctx context.Context) (uint64, error) {
	latest, err := b.store.GetLatestSlot(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "error loading latest slot")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if latest > b.slot {
		b.log.WithFields(logrus.Fields{
			"method": "RestoreSlot",
			"from":   b.slot,
			"to":     latest,
		}).Info("restored slot from store")
		b.slot = latest
	}
	return b.slot, nil
}

// Airdrop credits lamports to address, creating a system account if needed.
func (b *Bank) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := newOverlay(ctx, b.store)

	account, err := state.load(address)
	if err != nil {
		return err
	}
	if account == nil {
		account = NewSystemAccount(address, 0)
	}
	account.Lamports += lamports
	state.put(account)

	updated, deleted := state.changes(b.slot)
	return b.store.Commit(ctx, updated, deleted)
}

// GetAccount returns the committed state of address.
//
// Returns ErrAccountNotFound if the account doesn't exist.
func (b *Bank) GetAccount(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	return b.store.Get(ctx, address)
}

// GetBalance returns the lamports held by address, which is zero for
// accounts that don't exist.
func (b *Bank) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	account, err := b.store.Get(ctx, address)
	if err == ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

// GetProgramAccounts returns a page of the accounts owned by program.
//
// Returns ErrAccountNotFound if no accounts are found.
func (b *Bank) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Account, error) {
	return b.store.GetAllByOwner(ctx, program, cursor, limit, direction)
}

// ProcessTransaction verifies and executes txn. Failures caused by the
// transaction itself are returned as *solana.TransactionError, in which case
// no state was changed.
func (b *Bank) ProcessTransaction(ctx context.Context, txn *solana.Transaction) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ProcessTransaction")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	log := b.log.WithFields(logrus.Fields{
		"method": "ProcessTransaction",
		"slot":   b.slot,
	})

	if err := txn.Message.Sanitize(); err != nil {
		log.WithError(err).Debug("transaction failed to sanitize")
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if index, ok := txn.VerifySignatures(); !ok {
		log.WithField("index", index).Debug("transaction signature failed to verify")
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}
	log = log.WithField("signature", base58.Encode(txn.Signature()))

	instructions := make([]solana.Instruction, len(txn.Message.Instructions))
	instructionDatas := make([][]byte, len(instructions))
	for i := range instructions {
		instructions[i], err = txn.Message.DecompileInstruction(i)
		if err != nil {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		instructionDatas[i] = instructions[i].Data
	}

	for i, instruction := range instructions {
		if !isPrecompile(instruction.Program) {
			continue
		}
		if err := ed25519program.Verify(instruction.Data, instructionDatas); err != nil {
			log.WithError(err).WithField("index", i).Debug("precompile rejected transaction")
			return b.instructionError(i, err)
		}
	}

	sysvarData := sysvar.MarshalInstructions(instructions)
	state := newOverlay(ctx, b.store)

	for i, instruction := range instructions {
		if isPrecompile(instruction.Program) {
			continue
		}

		program, ok := b.programs[base58.Encode(instruction.Program)]
		if !ok {
			return b.instructionError(i, NewInstructionFailure(solana.InstructionErrorUnsupportedProgramID, "%s", base58.Encode(instruction.Program)))
		}

		sysvar.SetCurrentIndex(sysvarData, uint16(i))

		invokeCtx := &InvokeContext{
			ctx:         ctx,
			log:         log.WithField("index", i),
			rent:        b.rent,
			slot:        b.slot,
			state:       state,
			instruction: instruction,
			index:       i,
			sysvarData:  sysvarData,
		}

		if err := program.Process(invokeCtx); err != nil {
			var failure *InstructionFailure
			var coded interface{ CustomError() solana.CustomError }
			var custom solana.CustomError
			if !errors.As(err, &failure) && !errors.As(err, &coded) && !errors.As(err, &custom) {
				// Anything else is an infrastructure failure, such as the
				// store being unavailable.
				log.WithError(err).Warn("failure executing instruction")
				return err
			}

			log.WithError(err).WithField("index", i).Debug("instruction failed")
			return b.instructionError(i, err)
		}
	}

	updated, deleted := state.changes(b.slot)
	if err := b.store.Commit(ctx, updated, deleted); err != nil {
		log.WithError(err).Warn("failure committing transaction")
		return errors.Wrap(err, "error committing transaction")
	}

	return nil
}

func (b *Bank) instructionError(index int, err error) error {
	txnErr, convErr := solana.TransactionErrorFromInstructionError(solana.NewInstructionError(index, err))
	if convErr != nil {
		return errors.Wrap(convErr, "error building transaction error")
	}
	return txnErr
}

func isPrecompile(program ed25519.PublicKey) bool {
	return bytes.Equal(program, ed25519program.ProgramKey)
}
