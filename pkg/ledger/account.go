package ledger

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-dice/pkg/solana/system"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// Account is the ledger state of a single address.
//
// An account exists as long as it holds lamports. Accounts drained to zero
// lamports are removed when the transaction that drained them commits.
type Account struct {
	Id uint64

	Address    ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Owner      ed25519.PublicKey
	Executable bool

	// Slot is the last slot in which the account was written.
	Slot uint64
}

// NewSystemAccount returns a data-less account owned by the system program.
func NewSystemAccount(address ed25519.PublicKey, lamports uint64) *Account {
	return &Account{
		Address:  address,
		Lamports: lamports,
		Owner:    system.ProgramKey[:],
	}
}

func (a *Account) Validate() error {
	if len(a.Address) != ed25519.PublicKeySize {
		return errors.New("invalid address")
	}
	if len(a.Owner) != ed25519.PublicKeySize {
		return errors.New("invalid owner")
	}
	return nil
}

// IsSystemOwned reports whether the account is owned by the system program.
func (a *Account) IsSystemOwned() bool {
	return bytes.Equal(a.Owner, system.ProgramKey[:])
}

func (a *Account) Clone() Account {
	cloned := Account{
		Id:         a.Id,
		Lamports:   a.Lamports,
		Executable: a.Executable,
		Slot:       a.Slot,
	}

	if a.Address != nil {
		cloned.Address = make(ed25519.PublicKey, len(a.Address))
		copy(cloned.Address, a.Address)
	}
	if a.Owner != nil {
		cloned.Owner = make(ed25519.PublicKey, len(a.Owner))
		copy(cloned.Owner, a.Owner)
	}
	if a.Data != nil {
		cloned.Data = make([]byte, len(a.Data))
		copy(cloned.Data, a.Data)
	}

	return cloned
}

func (a *Account) String() string {
	return fmt.Sprintf(
		"Account{address=%s,lamports=%d,owner=%s,data_len=%d,executable=%v}",
		base58.Encode(a.Address),
		a.Lamports,
		base58.Encode(a.Owner),
		len(a.Data),
		a.Executable,
	)
}
