package ledger_test

import (
	"context"
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/ledger/memory"
	"github.com/code-payments/code-dice/pkg/solana"
	ed25519program "github.com/code-payments/code-dice/pkg/solana/ed25519"
	"github.com/code-payments/code-dice/pkg/solana/system"
	"github.com/code-payments/code-dice/pkg/solana/sysvar"
)

type testEnv struct {
	ctx  context.Context
	bank *ledger.Bank
}

func setup(t *testing.T) testEnv {
	return testEnv{
		ctx:  context.Background(),
		bank: ledger.NewBank(memory.New()),
	}
}

func TestBank_AirdropAndTransfer(t *testing.T) {
	env := setup(t)

	sender := generateKey(t)
	receiver := public(generateKey(t))

	require.NoError(t, env.bank.Airdrop(env.ctx, public(sender), 1_000))
	require.NoError(t, env.bank.Airdrop(env.ctx, public(sender), 500))
	assertBalance(t, env, public(sender), 1_500)
	assertBalance(t, env, receiver, 0)

	_, err := env.bank.GetAccount(env.ctx, receiver)
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	txn := newSignedTransaction(t, sender, system.Transfer(public(sender), receiver, 400))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	assertBalance(t, env, public(sender), 1_100)
	assertBalance(t, env, receiver, 400)

	account, err := env.bank.GetAccount(env.ctx, receiver)
	require.NoError(t, err)
	assert.True(t, account.IsSystemOwned())
	assert.Equal(t, env.bank.Slot(), account.Slot)

	// Draining an account removes it.
	txn = newSignedTransaction(t, sender, system.Transfer(public(sender), receiver, 1_100))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	_, err = env.bank.GetAccount(env.ctx, public(sender))
	assert.Equal(t, ledger.ErrAccountNotFound, err)
	assertBalance(t, env, receiver, 1_500)
}

func TestBank_FailedTransactionIsAtomic(t *testing.T) {
	env := setup(t)

	sender := generateKey(t)
	first := public(generateKey(t))
	second := public(generateKey(t))

	require.NoError(t, env.bank.Airdrop(env.ctx, public(sender), 100))

	txn := newSignedTransaction(
		t,
		sender,
		system.Transfer(public(sender), first, 60),
		system.Transfer(public(sender), second, 60),
	)
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorInsufficientFunds))

	var txnErr *solana.TransactionError
	require.True(t, errors.As(err, &txnErr))
	assert.Equal(t, 1, txnErr.InstructionError().Index)

	assertBalance(t, env, public(sender), 100)
	assertBalance(t, env, first, 0)
	assertBalance(t, env, second, 0)
}

func TestBank_SignatureFailure(t *testing.T) {
	env := setup(t)

	sender := generateKey(t)
	require.NoError(t, env.bank.Airdrop(env.ctx, public(sender), 100))

	txn := solana.NewTransaction(public(sender), system.Transfer(public(sender), public(generateKey(t)), 10))
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsTransactionFailure(err, solana.TransactionErrorSignatureFailure))

	txn = newSignedTransaction(t, sender, system.Transfer(public(sender), public(generateKey(t)), 10))
	txn.Message.Instructions[0].Data[4]++
	err = env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsTransactionFailure(err, solana.TransactionErrorSignatureFailure))

	assertBalance(t, env, public(sender), 100)
}

func TestBank_MissingTransferSigner(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	victim := public(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 100))
	require.NoError(t, env.bank.Airdrop(env.ctx, victim, 100))

	instruction := system.Transfer(victim, public(payer), 50)
	instruction.Accounts[0].IsSigner = false

	txn := newSignedTransaction(t, payer, instruction)
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorMissingRequiredSignature))

	assertBalance(t, env, victim, 100)
}

func TestBank_Precompile(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	signer := generateKey(t)
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 100))

	message := []byte("message")

	txn := newSignedTransaction(t, payer, ed25519program.Instruction(signer, message))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	signature := ed25519.Sign(signer, []byte("other message"))
	tampered := solana.NewInstruction(ed25519program.ProgramKey, ed25519program.InstructionData(public(signer), signature, message))

	txn = newSignedTransaction(t, payer, system.Transfer(public(payer), public(signer), 10), tampered)
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	require.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorCustom))

	var txnErr *solana.TransactionError
	require.True(t, errors.As(err, &txnErr))
	assert.Equal(t, 1, txnErr.InstructionError().Index)
	assert.EqualValues(t, ed25519program.PrecompileErrorInvalidSignature, *txnErr.InstructionError().CustomError())

	assertBalance(t, env, public(payer), 100)
}

func TestBank_UnsupportedProgram(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 100))

	txn := newSignedTransaction(t, payer, solana.NewInstruction(public(generateKey(t)), []byte{1}))
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorUnsupportedProgramID))
}

func TestBank_Slots(t *testing.T) {
	env := setup(t)

	assert.EqualValues(t, 1, env.bank.Slot())
	assert.EqualValues(t, 11, env.bank.AdvanceSlots(10))
	require.NoError(t, env.bank.WarpToSlot(9_011))
	assert.EqualValues(t, 9_011, env.bank.Slot())
	assert.Equal(t, ledger.ErrSlotRegression, env.bank.WarpToSlot(9_010))
	assert.EqualValues(t, 9_011, env.bank.Slot())

	bank := ledger.NewBank(memory.New(), ledger.WithSlot(500))
	assert.EqualValues(t, 500, bank.Slot())

	bank = ledger.NewBank(memory.New(), ledger.WithSlot(math.MaxUint64-1))
	assert.EqualValues(t, uint64(math.MaxUint64), bank.AdvanceSlots(5))
	assert.EqualValues(t, uint64(math.MaxUint64), bank.AdvanceSlots(1))
}

func TestBank_RestoreSlot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	bank := ledger.NewBank(store)
	slot, err := bank.RestoreSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, slot)

	require.NoError(t, bank.WarpToSlot(50_001))
	require.NoError(t, bank.Airdrop(ctx, public(generateKey(t)), 100))

	restarted := ledger.NewBank(store)
	assert.EqualValues(t, 1, restarted.Slot())
	slot, err = restarted.RestoreSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 50_001, slot)
	assert.EqualValues(t, 50_001, restarted.Slot())

	// Later writes are never stamped behind the stored state.
	other := public(generateKey(t))
	require.NoError(t, restarted.Airdrop(ctx, other, 100))
	account, err := restarted.GetAccount(ctx, other)
	require.NoError(t, err)
	assert.EqualValues(t, 50_001, account.Slot)

	ahead := ledger.NewBank(store, ledger.WithSlot(60_000))
	slot, err = ahead.RestoreSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 60_000, slot)
}

func TestBank_CreateAccount(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	target := generateKey(t)
	owner := public(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 10_000_000))

	minimum := env.bank.Rent().MinimumBalance(74)
	assert.EqualValues(t, 1_405_920, minimum)

	txn := newSignedTransactionWithSigners(t, payer, []ed25519.PrivateKey{target}, system.CreateAccount(public(payer), public(target), owner, minimum, 74))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	account, err := env.bank.GetAccount(env.ctx, public(target))
	require.NoError(t, err)
	assert.EqualValues(t, minimum, account.Lamports)
	assert.Len(t, account.Data, 74)
	assert.EqualValues(t, owner, account.Owner)
	assertBalance(t, env, public(payer), 10_000_000-minimum)

	txn = newSignedTransactionWithSigners(t, payer, []ed25519.PrivateKey{target}, system.CreateAccount(public(payer), public(target), owner, minimum, 74))
	err = env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorAccountAlreadyInitialized))
	assertBalance(t, env, public(payer), 10_000_000-minimum)

	accounts, err := env.bank.GetProgramAccounts(env.ctx, owner, nil, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.EqualValues(t, public(target), accounts[0].Address)
}

func TestBank_ProgramAccounts(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	programID := public(generateKey(t))
	seeds := [][]byte{[]byte("state")}
	state, bump, err := solana.FindProgramAddressAndBump(programID, seeds...)
	require.NoError(t, err)
	signerSeeds := append(seeds, []byte{bump})

	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 10_000_000))

	env.bank.RegisterProgram(programID, ledger.ProgramFunc(func(ctx *ledger.InvokeContext) error {
		accounts := ctx.Accounts()
		switch ctx.Data()[0] {
		case 0:
			if err := ctx.CreateAccount(accounts[0].PublicKey, accounts[1].PublicKey, 4, ctx.ProgramID(), signerSeeds); err != nil {
				return err
			}
			return ctx.SetData(accounts[1].PublicKey, []byte{1, 2, 3, 4})
		case 1:
			return ctx.SetData(accounts[1].PublicKey, []byte{1, 2})
		case 2:
			return ctx.Close(accounts[1].PublicKey, accounts[0].PublicKey)
		default:
			return solana.CustomError(42)
		}
	}))

	instruction := func(command byte) solana.Instruction {
		return solana.NewInstruction(
			programID,
			[]byte{command},
			solana.NewAccountMeta(public(payer), true),
			solana.NewAccountMeta(state, false),
		)
	}

	txn := newSignedTransaction(t, payer, instruction(0))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	minimum := env.bank.Rent().MinimumBalance(4)
	account, err := env.bank.GetAccount(env.ctx, state)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, account.Data)
	assert.EqualValues(t, programID, account.Owner)
	assert.EqualValues(t, minimum, account.Lamports)
	assertBalance(t, env, public(payer), 10_000_000-minimum)

	txn = newSignedTransaction(t, payer, instruction(1))
	err = env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorAccountDataSizeChanged))

	txn = newSignedTransaction(t, payer, instruction(3))
	err = env.bank.ProcessTransaction(env.ctx, &txn)
	require.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorCustom))

	txn = newSignedTransaction(t, payer, instruction(2))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	_, err = env.bank.GetAccount(env.ctx, state)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
	assertBalance(t, env, public(payer), 10_000_000)

	_, err = env.bank.GetProgramAccounts(env.ctx, programID, nil, 10, query.Ascending)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
}

func TestBank_InfrastructureFailure(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	programID := public(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 100))

	failure := errors.New("store unavailable")
	env.bank.RegisterProgram(programID, ledger.ProgramFunc(func(ctx *ledger.InvokeContext) error {
		return failure
	}))

	txn := newSignedTransaction(t, payer, solana.NewInstruction(programID, nil))
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.Equal(t, failure, err)
}

func TestBank_InstructionsSysvar(t *testing.T) {
	env := setup(t)

	payer := generateKey(t)
	signer := generateKey(t)
	programID := public(generateKey(t))
	require.NoError(t, env.bank.Airdrop(env.ctx, public(payer), 100))

	var current uint16
	var previous solana.Instruction
	env.bank.RegisterProgram(programID, ledger.ProgramFunc(func(ctx *ledger.InvokeContext) error {
		instructions := sysvar.InstructionsKey
		if accounts := ctx.Accounts(); len(accounts) > 0 {
			instructions = accounts[0].PublicKey
		}

		var err error
		current, err = ctx.LoadCurrentIndex(instructions)
		if err != nil {
			return err
		}
		previous, err = ctx.LoadInstructionAt(instructions, int(current)-1)
		return err
	}))

	verify := ed25519program.Instruction(signer, []byte("message"))
	txn := newSignedTransaction(
		t,
		payer,
		verify,
		solana.NewInstruction(programID, nil, solana.NewReadonlyAccountMeta(sysvar.InstructionsKey, false)),
	)
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, &txn))

	assert.EqualValues(t, 1, current)
	assert.EqualValues(t, ed25519program.ProgramKey, previous.Program)
	assert.Equal(t, verify.Data, previous.Data)
	assert.Empty(t, previous.Accounts)

	// The sysvar must be passed in, and must be the real one.
	txn = newSignedTransaction(t, payer, solana.NewInstruction(programID, nil))
	err := env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorMissingAccount))

	fake := public(generateKey(t))
	txn = newSignedTransaction(t, payer, solana.NewInstruction(programID, nil, solana.NewReadonlyAccountMeta(fake, false)))
	err = env.bank.ProcessTransaction(env.ctx, &txn)
	assert.True(t, ledger.IsInstructionFailure(err, solana.InstructionErrorUnsupportedSysvar))
}

func newSignedTransaction(t *testing.T, payer ed25519.PrivateKey, instructions ...solana.Instruction) solana.Transaction {
	return newSignedTransactionWithSigners(t, payer, nil, instructions...)
}

func newSignedTransactionWithSigners(t *testing.T, payer ed25519.PrivateKey, signers []ed25519.PrivateKey, instructions ...solana.Instruction) solana.Transaction {
	txn := solana.NewTransaction(public(payer), instructions...)
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{payer}, signers...)...))
	return txn
}

func assertBalance(t *testing.T, env testEnv, address ed25519.PublicKey, expected uint64) {
	balance, err := env.bank.GetBalance(env.ctx, address)
	require.NoError(t, err)
	assert.Equal(t, expected, balance)
}

func generateKey(t *testing.T) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}
