package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math/bits"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/system"
	"github.com/code-payments/code-dice/pkg/solana/sysvar"
)

// InvokeContext is everything an executing instruction may observe or
// change. Programs never touch ledger state except through it.
type InvokeContext struct {
	ctx context.Context
	log *logrus.Entry

	rent Rent
	slot uint64

	state       *overlay
	instruction solana.Instruction
	index       int
	sysvarData  []byte
}

func (c *InvokeContext) Context() context.Context {
	return c.ctx
}

func (c *InvokeContext) Logger() *logrus.Entry {
	return c.log
}

// ProgramID is the program being invoked.
func (c *InvokeContext) ProgramID() ed25519.PublicKey {
	return c.instruction.Program
}

// Accounts are the account metas passed to the instruction, in order.
func (c *InvokeContext) Accounts() []solana.AccountMeta {
	return c.instruction.Accounts
}

// Data is the instruction data.
func (c *InvokeContext) Data() []byte {
	return c.instruction.Data
}

// Index is the position of the instruction in its transaction.
func (c *InvokeContext) Index() int {
	return c.index
}

// Slot is the current ledger slot.
func (c *InvokeContext) Slot() uint64 {
	return c.slot
}

func (c *InvokeContext) Rent() Rent {
	return c.rent
}

// GetAccount returns a copy of the account at address, which must be passed
// to the instruction.
//
// Returns ErrAccountNotFound if the account doesn't exist.
func (c *InvokeContext) GetAccount(address ed25519.PublicKey) (*Account, error) {
	if _, err := c.meta(address); err != nil {
		return nil, err
	}

	account, err := c.state.load(address)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	cloned := account.Clone()
	return &cloned, nil
}

// IsSigner reports whether address signed the transaction, or is a program
// address of the invoked program derived from one of signerSeeds.
func (c *InvokeContext) IsSigner(address ed25519.PublicKey, signerSeeds ...[][]byte) bool {
	meta, err := c.meta(address)
	if err != nil {
		return false
	}
	if meta.IsSigner {
		return true
	}

	for _, seeds := range signerSeeds {
		derived, err := solana.CreateProgramAddress(c.ProgramID(), seeds...)
		if err == nil && bytes.Equal(derived, address) {
			return true
		}
	}
	return false
}

// Transfer moves lamports between accounts following system program rules:
// from must be a data-less system account that signed, either directly or
// through signerSeeds.
func (c *InvokeContext) Transfer(from, to ed25519.PublicKey, lamports uint64, signerSeeds ...[][]byte) error {
	if err := c.checkWritable(from, to); err != nil {
		return err
	}
	if !c.IsSigner(from, signerSeeds...) {
		return NewInstructionFailure(solana.InstructionErrorMissingRequiredSignature, "transfer source %s", base58.Encode(from))
	}

	source, err := c.state.load(from)
	if err != nil {
		return err
	}
	if source == nil {
		source = NewSystemAccount(from, 0)
	}
	if !source.IsSystemOwned() || len(source.Data) > 0 {
		return NewInstructionFailure(solana.InstructionErrorInvalidArgument, "transfer source %s must be a data-less system account", base58.Encode(from))
	}
	if source.Lamports < lamports {
		return NewInstructionFailure(solana.InstructionErrorInsufficientFunds, "%s has %d lamports, needs %d", base58.Encode(from), source.Lamports, lamports)
	}
	if lamports == 0 || bytes.Equal(from, to) {
		return nil
	}

	return c.move(source, to, lamports)
}

// CreateAccount allocates space bytes at target, funded to the rent exempt
// minimum by payer, and assigns it to owner.
func (c *InvokeContext) CreateAccount(payer, target ed25519.PublicKey, space uint64, owner ed25519.PublicKey, signerSeeds ...[][]byte) error {
	return c.createAccount(payer, target, c.rent.MinimumBalance(space), space, owner, signerSeeds...)
}

func (c *InvokeContext) createAccount(payer, target ed25519.PublicKey, lamports, space uint64, owner ed25519.PublicKey, signerSeeds ...[][]byte) error {
	if err := c.checkWritable(payer, target); err != nil {
		return err
	}
	if !c.IsSigner(payer, signerSeeds...) {
		return NewInstructionFailure(solana.InstructionErrorMissingRequiredSignature, "create account payer %s", base58.Encode(payer))
	}
	if !c.IsSigner(target, signerSeeds...) {
		return NewInstructionFailure(solana.InstructionErrorMissingRequiredSignature, "create account target %s", base58.Encode(target))
	}

	existing, err := c.state.load(target)
	if err != nil {
		return err
	}
	if existing != nil && (existing.Lamports > 0 || len(existing.Data) > 0) {
		return NewInstructionFailure(solana.InstructionErrorAccountAlreadyInitialized, "%s already in use", base58.Encode(target))
	}

	source, err := c.state.load(payer)
	if err != nil {
		return err
	}
	if source == nil || !source.IsSystemOwned() || len(source.Data) > 0 {
		return NewInstructionFailure(solana.InstructionErrorInsufficientFunds, "payer %s cannot fund account creation", base58.Encode(payer))
	}
	if source.Lamports < lamports {
		return NewInstructionFailure(solana.InstructionErrorInsufficientFunds, "%s has %d lamports, needs %d", base58.Encode(payer), source.Lamports, lamports)
	}

	created := &Account{
		Address: target,
		Data:    make([]byte, space),
		Owner:   owner,
	}
	if existing != nil {
		created.Id = existing.Id
	}
	c.state.put(created)

	return c.move(source, target, lamports)
}

// SetData overwrites the data of an account owned by the invoked program. The
// data size can't change.
func (c *InvokeContext) SetData(address ed25519.PublicKey, data []byte) error {
	if err := c.checkWritable(address); err != nil {
		return err
	}

	account, err := c.owned(address)
	if err != nil {
		return err
	}
	if len(data) != len(account.Data) {
		return NewInstructionFailure(solana.InstructionErrorAccountDataSizeChanged, "%s has %d bytes, got %d", base58.Encode(address), len(account.Data), len(data))
	}

	copy(account.Data, data)
	c.state.put(account)
	return nil
}

// Close drains an account owned by the invoked program into destination,
// clears its data and hands it back to the system program. The account is
// removed when the transaction commits.
func (c *InvokeContext) Close(address, destination ed25519.PublicKey) error {
	if err := c.checkWritable(address, destination); err != nil {
		return err
	}
	if bytes.Equal(address, destination) {
		return NewInstructionFailure(solana.InstructionErrorInvalidArgument, "cannot close %s into itself", base58.Encode(address))
	}

	account, err := c.owned(address)
	if err != nil {
		return err
	}

	if err := c.move(account, destination, account.Lamports); err != nil {
		return err
	}

	account.Data = nil
	account.Owner = system.ProgramKey[:]
	c.state.put(account)
	return nil
}

// LoadCurrentIndex returns the index of the executing instruction from the
// instructions sysvar, which must be passed to the instruction.
func (c *InvokeContext) LoadCurrentIndex(sysvarAccount ed25519.PublicKey) (uint16, error) {
	if err := c.checkSysvar(sysvarAccount); err != nil {
		return 0, err
	}
	return sysvar.LoadCurrentIndex(c.sysvarData)
}

// LoadInstructionAt returns an instruction of the executing transaction from
// the instructions sysvar, which must be passed to the instruction.
func (c *InvokeContext) LoadInstructionAt(sysvarAccount ed25519.PublicKey, index int) (solana.Instruction, error) {
	if err := c.checkSysvar(sysvarAccount); err != nil {
		return solana.Instruction{}, err
	}
	return sysvar.LoadInstructionAt(c.sysvarData, index)
}

func (c *InvokeContext) checkSysvar(address ed25519.PublicKey) error {
	if err := sysvar.CheckKey(address); err != nil {
		return NewInstructionFailure(solana.InstructionErrorUnsupportedSysvar, "%s", base58.Encode(address))
	}
	_, err := c.meta(address)
	return err
}

func (c *InvokeContext) move(source *Account, to ed25519.PublicKey, lamports uint64) error {
	destination, err := c.state.load(to)
	if err != nil {
		return err
	}
	if destination == nil {
		destination = NewSystemAccount(to, 0)
	}

	credited, carry := bits.Add64(destination.Lamports, lamports, 0)
	if carry != 0 {
		return NewInstructionFailure(solana.InstructionErrorArithmeticOverflow, "crediting %s", base58.Encode(to))
	}

	source.Lamports -= lamports
	destination.Lamports = credited

	c.state.put(source)
	c.state.put(destination)
	return nil
}

func (c *InvokeContext) owned(address ed25519.PublicKey) (*Account, error) {
	account, err := c.state.load(address)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, NewInstructionFailure(solana.InstructionErrorUninitializedAccount, "%s", base58.Encode(address))
	}
	if !bytes.Equal(account.Owner, c.ProgramID()) {
		return nil, NewInstructionFailure(solana.InstructionErrorExternalAccountDataModified, "%s is not owned by %s", base58.Encode(address), base58.Encode(c.ProgramID()))
	}
	return account, nil
}

func (c *InvokeContext) meta(address ed25519.PublicKey) (solana.AccountMeta, error) {
	for _, meta := range c.instruction.Accounts {
		if bytes.Equal(meta.PublicKey, address) {
			return meta, nil
		}
	}
	return solana.AccountMeta{}, NewInstructionFailure(solana.InstructionErrorMissingAccount, "%s", base58.Encode(address))
}

func (c *InvokeContext) checkWritable(addresses ...ed25519.PublicKey) error {
	for _, address := range addresses {
		meta, err := c.meta(address)
		if err != nil {
			return err
		}
		if !meta.IsWritable {
			return NewInstructionFailure(solana.InstructionErrorReadonlyLamportChange, "%s is readonly", base58.Encode(address))
		}
	}
	return nil
}
